// Package output renders result sets and schemas in the sql|json|summary
// formats the CLI accepts, adapted from the teacher's diff/migration
// formatter package to this engine's row-oriented results.
package output

import (
	"fmt"
	"strings"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatSQL     Format = "sql"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter renders a query result chunk or a table schema as text.
type Formatter interface {
	FormatRows(c *chunk.DataChunk) (string, error)
	FormatSchema(names []string, types []ltype.Type) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to SQL format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatSQL:
		return sqlFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'sql', 'json', or 'summary'", name)
	}
}

// scalarOf converts a logical value to a plain Go value suitable for JSON
// encoding or string rendering. UNION values unwrap to their payload;
// STRUCT/ARRAY/LIST/MAP recurse.
func scalarOf(v ltype.Value) any {
	if v.Null {
		return nil
	}
	switch v.Tag {
	case ltype.Boolean:
		return v.Bool
	case ltype.StringLiteral, ltype.Date, ltype.Timestamp, ltype.Interval, ltype.UUID:
		return v.Str
	case ltype.Float, ltype.Double, ltype.Decimal:
		return v.Float64
	case ltype.TinyInt, ltype.SmallInt, ltype.Integer, ltype.BigInt, ltype.HugeInt:
		return v.Int
	case ltype.UTinyInt, ltype.USmallInt, ltype.UInteger, ltype.UBigInt, ltype.UHugeInt, ltype.Enum:
		return v.Uint
	case ltype.Union:
		if v.Payload != nil {
			return scalarOf(*v.Payload)
		}
		return nil
	case ltype.Struct:
		out := make(map[string]any, len(v.Struct))
		for k, fv := range v.Struct {
			out[k] = scalarOf(fv)
		}
		return out
	case ltype.Array, ltype.List:
		out := make([]any, len(v.Elems))
		for i, ev := range v.Elems {
			out[i] = scalarOf(ev)
		}
		return out
	case ltype.Map:
		out := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			out[fmt.Sprint(scalarOf(p.Key))] = scalarOf(p.Value)
		}
		return out
	default:
		return nil
	}
}

// displayString renders a scalar value the way a human-facing table cell or
// a SQL literal would.
func displayString(v ltype.Value) string {
	if v.Null {
		return "NULL"
	}
	s := scalarOf(v)
	switch t := s.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func rowsOf(c *chunk.DataChunk) [][]ltype.Value {
	if c == nil {
		return nil
	}
	n := c.Cardinality()
	cols := c.ColumnCount()
	rows := make([][]ltype.Value, n)
	for r := 0; r < n; r++ {
		row := make([]ltype.Value, cols)
		for col := 0; col < cols; col++ {
			v := c.Column(col)
			if v.Valid(r) {
				row[col] = v.Value(r)
			} else {
				row[col] = ltype.NullValue(v.Type())
			}
		}
		rows[r] = row
	}
	return rows
}
