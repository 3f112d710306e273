package ops

import (
	"coldb/internal/chunk"
	"coldb/internal/filter"
	"coldb/internal/ltype"
	"coldb/internal/table"
)

// FullScan builds a filter from its predicate and pulls filtered,
// column-subset chunks from a table, truncating cardinality to limit.
// Limit -1 means unbounded; with limit 0, Execute returns end of stream
// (nil) at once without ever scanning the table.
type FullScan struct {
	Table         *table.Table
	Predicate     *filter.Expr
	Params        filter.ParamLookup
	Limit         int
	ColumnIndices []int // nil means all columns
	Capacity      int

	// postFilter holds a predicate that could not be pushed down (e.g. a
	// top-level NOT, which policy refuses to push down) and must be
	// evaluated row-by-row on what the table scan already returned.
	postFilter *filter.Expr

	state     *table.ScanState
	produced  int
	exhausted bool
}

// Prepare converts Predicate to a pushdown filter, falling back to a
// post-scan row filter when conversion is refused, and opens the scan
// session.
func (f *FullScan) Prepare() error {
	if f.Capacity <= 0 {
		f.Capacity = chunk.DefaultCapacity
	}
	var pushdown *filter.Filter
	if f.Predicate != nil {
		if pf, ok := filter.FromExpr(*f.Predicate, f.Params); ok {
			pushdown = pf
		} else {
			f.postFilter = f.Predicate
		}
	}
	f.state = f.Table.InitializeScan(f.ColumnIndices, pushdown)
	return nil
}

// Execute pulls the next filtered batch. It returns (nil, nil) once the
// scan is exhausted or limit has been reached.
func (f *FullScan) Execute(ctx *Context) (*chunk.DataChunk, error) {
	if f.exhausted || f.Limit == 0 {
		return nil, nil
	}

	names, types := f.columnSubset()
	for {
		if ctx != nil && ctx.Cancelled {
			return chunk.NewDataChunk(names, types, 0)
		}

		out, err := chunk.NewDataChunk(names, types, f.Capacity)
		if err != nil {
			return nil, err
		}
		n, err := f.Table.Scan(f.state, out)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			f.exhausted = true
			return nil, nil
		}

		if f.postFilter != nil {
			out, n, err = applyPostFilter(out, *f.postFilter, f.Params)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				// This batch had no surviving rows; pull the next one
				// rather than returning an empty chunk mid-stream.
				continue
			}
		}

		if f.Limit >= 0 {
			remaining := f.Limit - f.produced
			if remaining <= 0 {
				f.exhausted = true
				return nil, nil
			}
			if n > remaining {
				n = remaining
				if err := out.SetCardinality(n); err != nil {
					return nil, err
				}
			}
		}
		f.produced += n
		return out, nil
	}
}

// Modified reports no row ids: full_scan never writes.
func (f *FullScan) Modified() []int64 { return nil }

func (f *FullScan) columnSubset() ([]string, []ltype.Type) {
	allNames := f.Table.ColumnNames()
	allTypes := f.Table.ColumnTypes()
	indices := f.ColumnIndices
	if indices == nil {
		return allNames, allTypes
	}
	names := make([]string, len(indices))
	types := make([]ltype.Type, len(indices))
	for i, idx := range indices {
		names[i] = allNames[idx]
		types[i] = allTypes[idx]
	}
	return names, types
}

// applyPostFilter re-copies only the rows of out that satisfy expr,
// returning a compacted chunk of the same column set.
func applyPostFilter(out *chunk.DataChunk, expr filter.Expr, paramLookup filter.ParamLookup) (*chunk.DataChunk, int, error) {
	filtered, err := chunk.NewDataChunk(out.ColumnNames(), out.Types(), out.Capacity())
	if err != nil {
		return nil, 0, err
	}
	written := 0
	for row := 0; row < out.Cardinality(); row++ {
		if !expr.Eval(filter.Row{Chunk: out, Index: row}, nil, paramLookup) {
			continue
		}
		for col := 0; col < out.ColumnCount(); col++ {
			if !out.Column(col).Valid(row) {
				continue
			}
			if err := filtered.Column(col).SetValue(written, out.Column(col).Value(row)); err != nil {
				return nil, 0, err
			}
		}
		written++
	}
	if err := filtered.SetCardinality(written); err != nil {
		return nil, 0, err
	}
	return filtered, written, nil
}

// PrimaryKeyScan looks up a fixed list of document ids in the table's
// primary-key map and fetches the matching rows. Ids with no live row are
// silently skipped. Complexity is O(k) for k ids, independent of table
// size.
type PrimaryKeyScan struct {
	Table         *table.Table
	IDs           []table.DocumentID
	ColumnIndices []int
	Capacity      int

	executed bool
}

func (p *PrimaryKeyScan) Prepare() error {
	if p.Capacity <= 0 {
		p.Capacity = chunk.DefaultCapacity
	}
	return nil
}

func (p *PrimaryKeyScan) Execute(ctx *Context) (*chunk.DataChunk, error) {
	if p.executed {
		return nil, nil
	}
	p.executed = true

	rowIDs := make([]int64, 0, len(p.IDs))
	for _, id := range p.IDs {
		if rowID, ok := p.Table.GetRowID(id); ok {
			rowIDs = append(rowIDs, rowID)
		}
	}

	allNames := p.Table.ColumnNames()
	allTypes := p.Table.ColumnTypes()
	indices := p.ColumnIndices
	if indices == nil {
		indices = make([]int, len(allNames))
		for i := range indices {
			indices[i] = i
		}
	}
	names := make([]string, len(indices))
	types := make([]ltype.Type, len(indices))
	for i, idx := range indices {
		names[i] = allNames[idx]
		types[i] = allTypes[idx]
	}

	out, err := chunk.NewDataChunk(names, types, p.Capacity)
	if err != nil {
		return nil, err
	}
	if _, err := p.Table.Fetch(out, indices, rowIDs, len(rowIDs)); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PrimaryKeyScan) Modified() []int64 { return nil }
