package ops

import (
	"coldb/internal/chunk"
	"coldb/internal/filter"
	"coldb/internal/ltype"
)

// JoinType is a join's row-matching policy.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

// OperatorJoin is a nested-loop join over its two children's full output,
// applying Predicate (ignored for CrossJoin) and emitting concatenated
// rows: left columns followed by right columns.
type OperatorJoin struct {
	Left      Operator
	Right     Operator
	Predicate *filter.Expr
	Params    filter.ParamLookup
	Type      JoinType

	executed bool
}

func (o *OperatorJoin) Prepare() error {
	if err := o.Left.Prepare(); err != nil {
		return err
	}
	return o.Right.Prepare()
}

func (o *OperatorJoin) Execute(ctx *Context) (*chunk.DataChunk, error) {
	if o.executed {
		return nil, nil
	}
	o.executed = true

	left, err := drainAll(o.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := drainAll(o.Right, ctx)
	if err != nil {
		return nil, err
	}
	if left == nil && right == nil {
		return nil, nil
	}

	names := append(append([]string{}, safeNames(left)...), safeNames(right)...)
	types := append(append([]ltype.Type{}, safeTypes(left)...), safeTypes(right)...)
	leftCols := columnCountOf(left)
	rightCols := columnCountOf(right)

	out, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	if err != nil {
		return nil, err
	}
	row := 0
	rightMatched := make([]bool, cardinalityOf(right))

	appendRow := func(l *chunk.DataChunk, lr int, r *chunk.DataChunk, rr int) error {
		if row >= out.Capacity() {
			return nil
		}
		if l != nil {
			for c := 0; c < leftCols; c++ {
				if l.Column(c).Valid(lr) {
					if err := out.Column(c).SetValue(row, l.Column(c).Value(lr)); err != nil {
						return err
					}
				}
			}
		}
		if r != nil {
			for c := 0; c < rightCols; c++ {
				if r.Column(c).Valid(rr) {
					if err := out.Column(leftCols + c).SetValue(row, r.Column(c).Value(rr)); err != nil {
						return err
					}
				}
			}
		}
		row++
		return nil
	}

	for lr := 0; lr < cardinalityOf(left); lr++ {
		matched := false
		for rr := 0; rr < cardinalityOf(right); rr++ {
			if !o.matchRow(left, lr, right, rr) {
				continue
			}
			matched = true
			rightMatched[rr] = true
			if err := appendRow(left, lr, right, rr); err != nil {
				return nil, err
			}
		}
		if !matched && (o.Type == LeftJoin || o.Type == FullJoin) {
			if err := appendRow(left, lr, nil, 0); err != nil {
				return nil, err
			}
		}
	}
	if o.Type == RightJoin || o.Type == FullJoin {
		for rr := 0; rr < cardinalityOf(right); rr++ {
			if !rightMatched[rr] {
				if err := appendRow(nil, 0, right, rr); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := out.SetCardinality(row); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OperatorJoin) matchRow(left *chunk.DataChunk, lr int, right *chunk.DataChunk, rr int) bool {
	if o.Type == CrossJoin || o.Predicate == nil {
		return true
	}
	leftRow := filter.Row{Chunk: left, Index: lr}
	rightRow := filter.Row{Chunk: right, Index: rr}
	return o.Predicate.Eval(leftRow, &rightRow, o.Params)
}

func (o *OperatorJoin) Modified() []int64 { return nil }

func drainAll(op Operator, ctx *Context) (*chunk.DataChunk, error) {
	var all *chunk.DataChunk
	for {
		c, err := op.Execute(ctx)
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
	return all, nil
}

func safeNames(c *chunk.DataChunk) []string {
	if c == nil {
		return nil
	}
	return c.ColumnNames()
}

func safeTypes(c *chunk.DataChunk) []ltype.Type {
	if c == nil {
		return nil
	}
	return c.Types()
}

func columnCountOf(c *chunk.DataChunk) int {
	if c == nil {
		return 0
	}
	return c.ColumnCount()
}

func cardinalityOf(c *chunk.DataChunk) int {
	if c == nil {
		return 0
	}
	return c.Cardinality()
}
