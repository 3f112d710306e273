package output

import (
	"fmt"
	"strings"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

type summaryFormatter struct{}

// FormatRows renders a one-line row/column count summary plus a compact
// preview of the first few rows.
func (summaryFormatter) FormatRows(c *chunk.DataChunk) (string, error) {
	if c == nil || c.Cardinality() == 0 {
		return "0 rows\n", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d rows, %d columns (%s)\n", c.Cardinality(), c.ColumnCount(), strings.Join(c.ColumnNames(), ", ")))

	const preview = 5
	rows := rowsOf(c)
	for i, row := range rows {
		if i >= preview {
			sb.WriteString(fmt.Sprintf("... %d more\n", len(rows)-preview))
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = displayString(v)
		}
		sb.WriteString("  " + strings.Join(cells, " | ") + "\n")
	}
	return sb.String(), nil
}

// FormatSchema renders a one-line "N columns: name:type, ..." summary.
func (summaryFormatter) FormatSchema(names []string, types []ltype.Type) (string, error) {
	cells := make([]string, len(names))
	for i, name := range names {
		cells[i] = fmt.Sprintf("%s:%s", name, types[i].String())
	}
	return fmt.Sprintf("%d columns: %s\n", len(names), strings.Join(cells, ", ")), nil
}
