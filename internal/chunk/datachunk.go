package chunk

import (
	"coldb/internal/coldberr"
	"coldb/internal/ltype"
)

// DataChunk is a fixed-capacity batch of rows, one Vector per column, all
// sharing one logical row count (its cardinality). It is the unit every
// operator in the pipeline pulls and pushes.
type DataChunk struct {
	columns     []*Vector
	columnNames []string
	cardinality int
	capacity    int
}

// NewDataChunk allocates a chunk with one empty Flat vector per (name, type)
// pair, capacity rows each, and zero cardinality.
func NewDataChunk(names []string, types []ltype.Type, capacity int) (*DataChunk, error) {
	if len(names) != len(types) {
		return nil, coldberr.New(coldberr.Internal, "chunk: names and types length mismatch")
	}
	cols := make([]*Vector, len(types))
	for i, t := range types {
		cols[i] = NewFlatVector(t, capacity)
	}
	return &DataChunk{
		columns:     cols,
		columnNames: append([]string(nil), names...),
		capacity:    capacity,
	}, nil
}

// ColumnCount returns the number of columns in the chunk.
func (c *DataChunk) ColumnCount() int { return len(c.columns) }

// Cardinality returns the number of logical rows currently populated.
func (c *DataChunk) Cardinality() int { return c.cardinality }

// Capacity returns the chunk's fixed row capacity.
func (c *DataChunk) Capacity() int { return c.capacity }

// SetCardinality sets the number of populated rows. It is the caller's
// responsibility to have written valid data into rows [0, n); SetCardinality
// itself performs no validation beyond the capacity bound.
func (c *DataChunk) SetCardinality(n int) error {
	if n < 0 || n > c.capacity {
		return coldberr.Newf(coldberr.BoundsError, "chunk: cardinality %d out of [0,%d]", n, c.capacity)
	}
	c.cardinality = n
	return nil
}

// Reset zeroes cardinality without releasing the underlying vectors, so the
// chunk can be reused for the next scan batch.
func (c *DataChunk) Reset() {
	c.cardinality = 0
}

// Column returns the vector for column index i.
func (c *DataChunk) Column(i int) *Vector { return c.columns[i] }

// ColumnNames returns the chunk's column names, in column order.
func (c *DataChunk) ColumnNames() []string {
	return append([]string(nil), c.columnNames...)
}

// Types returns the chunk's column types, in column order.
func (c *DataChunk) Types() []ltype.Type {
	out := make([]ltype.Type, len(c.columns))
	for i, col := range c.columns {
		out[i] = col.Type()
	}
	return out
}

// ColumnIndex returns the index of name in the chunk, or (0, false) if it is
// not a column of this chunk.
func (c *DataChunk) ColumnIndex(name string) (int, bool) {
	for i, n := range c.columnNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// AddColumn appends a new, all-NULL Flat vector of type t named name to the
// chunk, sized to the chunk's existing capacity. Used to retrofit
// already-written chunks when the computed schema discovers a path no
// earlier chunk carried, so every chunk in a table keeps the same column
// count and index-to-path mapping.
func (c *DataChunk) AddColumn(name string, t ltype.Type) {
	c.columns = append(c.columns, NewFlatVector(t, c.capacity))
	c.columnNames = append(c.columnNames, name)
}

// Copy returns a deep copy of the chunk's first n rows (n <= Cardinality).
func (c *DataChunk) Copy(n int) (*DataChunk, error) {
	if n > c.cardinality {
		return nil, coldberr.Newf(coldberr.BoundsError, "chunk: copy of %d rows exceeds cardinality %d", n, c.cardinality)
	}
	out, err := NewDataChunk(c.columnNames, c.Types(), c.capacity)
	if err != nil {
		return nil, err
	}
	for colIdx, col := range c.columns {
		for row := 0; row < n; row++ {
			if col.Valid(row) {
				if err := out.columns[colIdx].SetValue(row, col.Value(row)); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := out.SetCardinality(n); err != nil {
		return nil, err
	}
	return out, nil
}
