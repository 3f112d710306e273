// Package mysqlexport renders a document table's current computed schema
// (or any table's fixed schema) as a MySQL CREATE TABLE statement, and
// optionally executes it against a live MySQL instance for debugging/export.
// It is a one-way export, not a migration tool: there is no rollback or
// preflight analysis, unlike the teacher's two-way migration applier this
// package is grounded on.
package mysqlexport

import (
	"fmt"
	"strings"

	"coldb/internal/coldberr"
	"coldb/internal/ltype"
)

// Generator renders CREATE TABLE statements for the MySQL dialect.
type Generator struct{}

// NewGenerator returns a stateless MySQL DDL generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateCreateTable renders a CREATE TABLE statement for name, with one
// column per (columnNames[i], columnTypes[i]) pair, in order.
func (g *Generator) GenerateCreateTable(name string, columnNames []string, columnTypes []ltype.Type) (string, error) {
	if len(columnNames) != len(columnTypes) {
		return "", coldberr.New(coldberr.Internal, "mysqlexport: column names and types length mismatch")
	}
	if len(columnNames) == 0 {
		return "", coldberr.Newf(coldberr.Unsupported, "mysqlexport: table %s has no columns to export", name)
	}

	lines := make([]string, 0, len(columnNames))
	for i, col := range columnNames {
		mysqlType, err := mysqlColumnType(columnTypes[i])
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("  %s %s", g.QuoteIdentifier(col), mysqlType))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", g.QuoteIdentifier(name), strings.Join(lines, ",\n")), nil
}

// QuoteIdentifier backtick-quotes name for use in generated SQL.
func (g *Generator) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// mysqlColumnType maps a logical type to a MySQL column type, routing
// through the physical layout for the fixed-width families and handling the
// string/nested families directly: a UNION column (from a document table's
// computed schema) has no single MySQL type, so it exports as JSON, the
// closest MySQL has to a tagged variant.
func mysqlColumnType(t ltype.Type) (string, error) {
	switch ltype.Physical(t) {
	case ltype.LayoutBit:
		return "TINYINT(1)", nil
	case ltype.LayoutByte1:
		return "TINYINT", nil
	case ltype.LayoutByte2:
		return "SMALLINT", nil
	case ltype.LayoutByte4:
		return mysqlByte4Type(t), nil
	case ltype.LayoutByte8:
		return mysqlByte8Type(t), nil
	case ltype.LayoutByte16:
		return mysqlByte16Type(t), nil
	case ltype.LayoutVarLen:
		return "TEXT", nil
	case ltype.LayoutNested:
		return "JSON", nil
	default:
		return "", coldberr.Newf(coldberr.Unsupported, "mysqlexport: no MySQL type for %s", t)
	}
}

func mysqlByte4Type(t ltype.Type) string {
	switch t.Tag {
	case ltype.Float:
		return "FLOAT"
	case ltype.Date:
		return "DATE"
	default:
		return "INT"
	}
}

func mysqlByte8Type(t ltype.Type) string {
	switch t.Tag {
	case ltype.Double:
		return "DOUBLE"
	case ltype.Timestamp:
		return "TIMESTAMP"
	case ltype.Interval:
		return "BIGINT"
	default:
		return "BIGINT"
	}
}

func mysqlByte16Type(t ltype.Type) string {
	switch t.Tag {
	case ltype.UUID:
		return "CHAR(36)"
	case ltype.Decimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	default:
		return "BINARY(16)"
	}
}
