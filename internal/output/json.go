package output

import (
	"encoding/json"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

type jsonFormatter struct{}

type rowsPayload struct {
	Format string           `json:"format"`
	Rows   []map[string]any `json:"rows"`
	Count  int              `json:"count"`
}

type schemaField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type schemaPayload struct {
	Format  string        `json:"format"`
	Columns []schemaField `json:"columns"`
}

// FormatRows renders the chunk as a JSON object carrying the format name,
// a "rows" array of column->value objects, and the row count. Each row is a
// Go map, so encoding/json writes its keys in sorted order, not column order.
func (jsonFormatter) FormatRows(c *chunk.DataChunk) (string, error) {
	payload := rowsPayload{Format: string(FormatJSON), Rows: []map[string]any{}}
	if c != nil {
		names := c.ColumnNames()
		for _, row := range rowsOf(c) {
			obj := make(map[string]any, len(names))
			for i, name := range names {
				obj[name] = scalarOf(row[i])
			}
			payload.Rows = append(payload.Rows, obj)
		}
		payload.Count = len(payload.Rows)
	}
	return marshalJSON(payload)
}

// FormatSchema renders names/types as a JSON column list.
func (jsonFormatter) FormatSchema(names []string, types []ltype.Type) (string, error) {
	payload := schemaPayload{Format: string(FormatJSON)}
	for i, name := range names {
		payload.Columns = append(payload.Columns, schemaField{Name: name, Type: types[i].String()})
	}
	return marshalJSON(payload)
}

func marshalJSON(payload any) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
