package ops

import (
	"sort"

	"coldb/internal/chunk"
	"coldb/internal/filter"
)

// SortKey is one ORDER BY term.
type SortKey struct {
	Column int
	Desc   bool
}

// OperatorSort materializes its child's full output and sorts it in memory
// by Keys, stable by the first key then the next, matching the spec's
// "stable by first key, then second, etc." contract.
type OperatorSort struct {
	Child Operator
	Keys  []SortKey

	executed bool
}

func (o *OperatorSort) Prepare() error { return o.Child.Prepare() }

func (o *OperatorSort) Execute(ctx *Context) (*chunk.DataChunk, error) {
	if o.executed {
		return nil, nil
	}
	o.executed = true

	var all *chunk.DataChunk
	for {
		c, err := o.Child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if c == nil {
			break
		}
		if all == nil {
			all = c
			continue
		}
		all, err = concatChunks(all, c)
		if err != nil {
			return nil, err
		}
	}
	if all == nil {
		return nil, nil
	}

	order := make([]int, all.Cardinality())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return o.less(all, order[i], order[j])
	})

	out, err := chunk.NewDataChunk(all.ColumnNames(), all.Types(), all.Cardinality())
	if err != nil {
		return nil, err
	}
	for dst, src := range order {
		for col := 0; col < all.ColumnCount(); col++ {
			if !all.Column(col).Valid(src) {
				continue
			}
			if err := out.Column(col).SetValue(dst, all.Column(col).Value(src)); err != nil {
				return nil, err
			}
		}
	}
	if err := out.SetCardinality(all.Cardinality()); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OperatorSort) less(c *chunk.DataChunk, i, j int) bool {
	for _, k := range o.Keys {
		lt := filter.Leaf(filter.Lt, filter.ColumnKey(k.Column, filter.Left), filter.ColumnKey(k.Column, filter.Right))
		rowI := filter.Row{Chunk: c, Index: i}
		rowJ := filter.Row{Chunk: c, Index: j}
		if lt.Eval(rowI, &rowJ, nil) {
			return !k.Desc
		}
		gt := filter.Leaf(filter.Gt, filter.ColumnKey(k.Column, filter.Left), filter.ColumnKey(k.Column, filter.Right))
		if gt.Eval(rowI, &rowJ, nil) {
			return k.Desc
		}
	}
	return false
}

func (o *OperatorSort) Modified() []int64 { return nil }

// concatChunks appends b's rows after a's, rebuilding into one chunk sized
// for the combined cardinality.
func concatChunks(a, b *chunk.DataChunk) (*chunk.DataChunk, error) {
	out, err := chunk.NewDataChunk(a.ColumnNames(), a.Types(), a.Cardinality()+b.Cardinality())
	if err != nil {
		return nil, err
	}
	row := 0
	for _, src := range []*chunk.DataChunk{a, b} {
		for r := 0; r < src.Cardinality(); r++ {
			for col := 0; col < src.ColumnCount(); col++ {
				if !src.Column(col).Valid(r) {
					continue
				}
				if err := out.Column(col).SetValue(row, src.Column(col).Value(r)); err != nil {
					return nil, err
				}
			}
			row++
		}
	}
	if err := out.SetCardinality(row); err != nil {
		return nil, err
	}
	return out, nil
}
