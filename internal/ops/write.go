package ops

import (
	"coldb/internal/chunk"
	"coldb/internal/coldberr"
	"coldb/internal/filter"
	"coldb/internal/ltype"
	"coldb/internal/shred"
	"coldb/internal/table"
)

// OperatorInsert inserts rows into Table. With Shredder set it expects a
// document-valued child (Source) and drives schema evolution through the
// shredder — the document-table path. With Shredder nil it expects a
// pre-shredded chunk from ChunkSource instead — the fixed-schema row-table
// path, matching the planner's insert_t routing rule.
type OperatorInsert struct {
	Table       *table.Table
	Shredder    *shred.Shredder
	Source      DocumentSource
	ChunkSource Operator
	PKColumn    string
	PKOf        func(ltype.Value) (table.DocumentID, bool)
	Capacity    int

	baseModified
}

func (o *OperatorInsert) Prepare() error {
	if o.Capacity <= 0 {
		o.Capacity = chunk.DefaultCapacity
	}
	if o.Shredder == nil && o.ChunkSource != nil {
		return o.ChunkSource.Prepare()
	}
	if o.Shredder == nil && o.ChunkSource == nil {
		return coldberr.New(coldberr.Internal, "operator_insert: needs either a Shredder+Source or a ChunkSource")
	}
	return nil
}

// Execute refuses a data-chunk input when configured for document insert —
// per the spec, operator_insert on the document-table path only ever reads
// documents — and otherwise appends the incoming rows, returning a chunk
// containing only the freshly inserted rows, re-read by row id.
func (o *OperatorInsert) Execute(ctx *Context) (*chunk.DataChunk, error) {
	o.modified = nil

	var toAppend *chunk.DataChunk
	if o.Shredder != nil {
		if o.ChunkSource != nil {
			return nil, coldberr.New(coldberr.Unsupported, "operator_insert: document insert does not accept a data-chunk input")
		}
		docs, err := o.Source.Documents()
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		shredded, _, err := o.Shredder.ShredBatch(docs, o.Capacity)
		if err != nil {
			return nil, err
		}
		toAppend = shredded
	} else {
		chunkIn, err := o.ChunkSource.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if chunkIn == nil {
			return nil, nil
		}
		toAppend = chunkIn
	}

	start := o.Table.RowCount()
	state := o.Table.InitializeAppend()
	if err := o.Table.Append(state, toAppend, o.PKColumn, o.PKOf); err != nil {
		return nil, err
	}
	n := toAppend.Cardinality()

	rowIDs := make([]int64, n)
	for i := 0; i < n; i++ {
		rowIDs[i] = start + int64(i)
		o.modified = append(o.modified, rowIDs[i])
	}

	names := o.Table.ColumnNames()
	indices := make([]int, len(names))
	for i := range indices {
		indices[i] = i
	}
	out, err := chunk.NewDataChunk(names, o.Table.ColumnTypes(), o.Capacity)
	if err != nil {
		return nil, err
	}
	if _, err := o.Table.Fetch(out, indices, rowIDs, n); err != nil {
		return nil, err
	}
	return out, nil
}

// OperatorDelete deletes rows matching Predicate. With Right set it
// evaluates Predicate over the Cartesian product of (left row, right row)
// — the join-style delete shape — and collects left row ids; otherwise it
// evaluates Predicate row-wise over Left's output.
type OperatorDelete struct {
	Table     *table.Table
	Left      Operator
	Right     Operator
	Predicate *filter.Expr
	Params    filter.ParamLookup
	LeftRowID func(*chunk.DataChunk, int) int64

	baseModified
}

func (o *OperatorDelete) Prepare() error {
	if err := o.Left.Prepare(); err != nil {
		return err
	}
	if o.Right != nil {
		return o.Right.Prepare()
	}
	return nil
}

func (o *OperatorDelete) Execute(ctx *Context) (*chunk.DataChunk, error) {
	o.modified = nil
	var rightChunks []*chunk.DataChunk
	if o.Right != nil {
		for {
			rc, err := o.Right.Execute(ctx)
			if err != nil {
				return nil, err
			}
			if rc == nil {
				break
			}
			rightChunks = append(rightChunks, rc)
		}
	}

	var toDelete []int64
	for {
		left, err := o.Left.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if left == nil {
			break
		}
		for row := 0; row < left.Cardinality(); row++ {
			matched := o.matches(left, row, rightChunks, ctx)
			if matched {
				toDelete = append(toDelete, o.rowIDOf(left, row))
			}
		}
	}

	state := o.Table.InitializeDelete()
	o.Table.DeleteRows(state, toDelete, len(toDelete))
	o.modified = toDelete
	return nil, nil
}

func (o *OperatorDelete) matches(left *chunk.DataChunk, row int, rightChunks []*chunk.DataChunk, ctx *Context) bool {
	if o.Predicate == nil {
		return true
	}
	leftRow := filter.Row{Chunk: left, Index: row}
	if o.Right == nil {
		return o.Predicate.Eval(leftRow, nil, o.Params)
	}
	for _, rc := range rightChunks {
		for rr := 0; rr < rc.Cardinality(); rr++ {
			rightRow := filter.Row{Chunk: rc, Index: rr}
			if o.Predicate.Eval(leftRow, &rightRow, o.Params) {
				return true
			}
		}
	}
	return false
}

func (o *OperatorDelete) rowIDOf(c *chunk.DataChunk, row int) int64 {
	if o.LeftRowID != nil {
		return o.LeftRowID(c, row)
	}
	if idx, ok := c.ColumnIndex("_row_id"); ok {
		return c.Column(idx).Value(row).Int
	}
	return int64(row)
}

func (o *OperatorDelete) Modified() []int64 { return o.modified }

// UpdateExpr is one SET clause: either a constant or a computed arithmetic
// tree evaluated over the left row. OperatorUpdate always passes Compute a
// nil right row.
type UpdateExpr struct {
	Column int
	Const  *ltype.Value
	Compute func(leftRow filter.Row, rightRow *filter.Row) ltype.Value
}

// OperatorUpdate mirrors OperatorDelete's fields but writes new column
// values for each matching row instead of deleting it. Predicate and
// Updates see only the left row: Right is prepared but never read, so there
// is no join-style (left, right) evaluation. If no row matches and Upsert is
// set, it appends one synthesized row: constants are written as given, and
// Compute functions are called with an empty Row (nil Chunk).
type OperatorUpdate struct {
	Table     *table.Table
	Left      Operator
	Right     Operator
	Predicate *filter.Expr
	Params    filter.ParamLookup
	Updates   []UpdateExpr
	Upsert    bool
	RowID     func(*chunk.DataChunk, int) int64

	baseModified
	noModified []int64
}

func (o *OperatorUpdate) Prepare() error {
	if err := o.Left.Prepare(); err != nil {
		return err
	}
	if o.Right != nil {
		return o.Right.Prepare()
	}
	return nil
}

func (o *OperatorUpdate) Execute(ctx *Context) (*chunk.DataChunk, error) {
	o.modified = nil
	o.noModified = nil

	anyMatched := false
	for {
		left, err := o.Left.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if left == nil {
			break
		}
		for row := 0; row < left.Cardinality(); row++ {
			leftRow := filter.Row{Chunk: left, Index: row}
			matched := o.Predicate == nil || o.Predicate.Eval(leftRow, nil, o.Params)
			if !matched {
				o.noModified = append(o.noModified, o.rowID(left, row))
				continue
			}
			anyMatched = true
			rowID := o.rowID(left, row)
			updateChunk, err := o.buildUpdateChunk(leftRow, nil)
			if err != nil {
				return nil, err
			}
			if err := o.Table.Update(o.Table.InitializeUpdate(), []int64{rowID}, updateChunk); err != nil {
				return nil, err
			}
			o.modified = append(o.modified, rowID)
		}
	}

	if !anyMatched && o.Upsert {
		synthesized, err := o.synthesizeRow()
		if err != nil {
			return nil, err
		}
		start := o.Table.RowCount()
		if err := o.Table.Append(o.Table.InitializeAppend(), synthesized, "", nil); err != nil {
			return nil, err
		}
		o.modified = append(o.modified, start)
	}
	return nil, nil
}

func (o *OperatorUpdate) rowID(c *chunk.DataChunk, row int) int64 {
	if o.RowID != nil {
		return o.RowID(c, row)
	}
	return int64(row)
}

func (o *OperatorUpdate) buildUpdateChunk(leftRow filter.Row, rightRow *filter.Row) (*chunk.DataChunk, error) {
	names := o.Table.ColumnNames()
	types := o.Table.ColumnTypes()
	out, err := chunk.NewDataChunk(names, types, 1)
	if err != nil {
		return nil, err
	}
	// Seed every column from the matched row first, so columns the update
	// expression list doesn't touch carry forward unchanged instead of
	// being nulled out by Table.Update's invalid-cell-means-NULL contract.
	if leftRow.Chunk != nil {
		for col := 0; col < out.ColumnCount() && col < leftRow.Chunk.ColumnCount(); col++ {
			if !leftRow.Chunk.Column(col).Valid(leftRow.Index) {
				continue
			}
			if err := out.Column(col).SetValue(0, leftRow.Chunk.Column(col).Value(leftRow.Index)); err != nil {
				return nil, err
			}
		}
	}
	for _, u := range o.Updates {
		var v ltype.Value
		if u.Const != nil {
			v = *u.Const
		} else if u.Compute != nil {
			v = u.Compute(leftRow, rightRow)
		} else {
			continue
		}
		if err := out.Column(u.Column).SetValue(0, v); err != nil {
			return nil, err
		}
	}
	if err := out.SetCardinality(1); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OperatorUpdate) synthesizeRow() (*chunk.DataChunk, error) {
	return o.buildUpdateChunk(filter.Row{}, nil)
}

func (o *OperatorUpdate) Modified() []int64 { return o.modified }

// NoModified returns the row ids visited but not matched by Predicate on
// the last Execute call.
func (o *OperatorUpdate) NoModified() []int64 { return o.noModified }
