package output

import (
	"fmt"
	"strings"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

type sqlFormatter struct{}

// FormatRows renders each row as a parenthesized tuple of SQL literals,
// preceded by a column-name comment header.
func (sqlFormatter) FormatRows(c *chunk.DataChunk) (string, error) {
	var sb strings.Builder
	if c == nil {
		sb.WriteString("-- (no rows)\n")
		return sb.String(), nil
	}

	sb.WriteString("-- " + strings.Join(c.ColumnNames(), ", ") + "\n")
	for _, row := range rowsOf(c) {
		sb.WriteString("(")
		for i, v := range row {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(sqlLiteral(v))
		}
		sb.WriteString(");\n")
	}
	return sb.String(), nil
}

// FormatSchema renders names/types as a CREATE TABLE-shaped column list.
func (sqlFormatter) FormatSchema(names []string, types []ltype.Type) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE (\n")
	for i, name := range names {
		sep := ","
		if i == len(names)-1 {
			sep = ""
		}
		sb.WriteString(fmt.Sprintf("  %s %s%s\n", name, types[i].String(), sep))
	}
	sb.WriteString(");\n")
	return sb.String(), nil
}

func sqlLiteral(v ltype.Value) string {
	if v.Null {
		return "NULL"
	}
	switch v.Tag {
	case ltype.StringLiteral, ltype.Date, ltype.Timestamp, ltype.Interval, ltype.UUID:
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	case ltype.Boolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return displayString(v)
	}
}
