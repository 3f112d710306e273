package ops

import (
	"fmt"
	"math"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

// AggFunc is a supported aggregate function.
type AggFunc int

const (
	Count AggFunc = iota
	Sum
	Avg
	Min
	Max
)

// Aggregate is one SELECT-list aggregate: AggFunc applied to Column
// (ignored for Count(*), where Column is -1), aliased to Alias. Distinct
// restricts Count to distinct values of Column.
type Aggregate struct {
	Func     AggFunc
	Column   int
	Alias    string
	Distinct bool
}

// OperatorGroup consumes its child's chunks, buckets rows by the values of
// GroupBy columns, and emits one output row per distinct group with the
// requested Aggregates plus the group-by columns themselves.
type OperatorGroup struct {
	Child      Operator
	GroupBy    []int
	Aggregates []Aggregate

	groups     map[string]*groupState
	groupOrder []string
	executed   bool
}

type groupState struct {
	keyValues []ltype.Value
	acc       []*aggAccumulator
}

type aggAccumulator struct {
	count   int64
	sum     float64
	min     *ltype.Value
	max     *ltype.Value
	seen    map[string]bool // for DISTINCT count
}

func (o *OperatorGroup) Prepare() error {
	o.groups = make(map[string]*groupState)
	return o.Child.Prepare()
}

func (o *OperatorGroup) Execute(ctx *Context) (*chunk.DataChunk, error) {
	if o.executed {
		return nil, nil
	}
	o.executed = true

	for {
		c, err := o.Child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if c == nil {
			break
		}
		for row := 0; row < c.Cardinality(); row++ {
			o.accumulate(c, row)
		}
	}
	return o.materialize()
}

func (o *OperatorGroup) accumulate(c *chunk.DataChunk, row int) {
	keyValues := make([]ltype.Value, len(o.GroupBy))
	key := ""
	for i, col := range o.GroupBy {
		v := c.Column(col).Value(row)
		keyValues[i] = v
		key += fmt.Sprintf("|%v", v)
	}

	g, ok := o.groups[key]
	if !ok {
		g = &groupState{keyValues: keyValues, acc: make([]*aggAccumulator, len(o.Aggregates))}
		for i := range g.acc {
			g.acc[i] = &aggAccumulator{seen: make(map[string]bool)}
		}
		o.groups[key] = g
		o.groupOrder = append(o.groupOrder, key)
	}

	for i, agg := range o.Aggregates {
		applyAggregate(g.acc[i], agg, c, row)
	}
}

func applyAggregate(acc *aggAccumulator, agg Aggregate, c *chunk.DataChunk, row int) {
	if agg.Func == Count && agg.Column < 0 {
		acc.count++
		return
	}
	if agg.Column < 0 || agg.Column >= c.ColumnCount() || !c.Column(agg.Column).Valid(row) {
		return
	}
	v := c.Column(agg.Column).Value(row)

	if agg.Func == Count && agg.Distinct {
		k := fmt.Sprintf("%v", v)
		if !acc.seen[k] {
			acc.seen[k] = true
			acc.count++
		}
		return
	}

	acc.count++
	acc.sum += numeric(v)
	if acc.min == nil || numeric(v) < numeric(*acc.min) {
		acc.min = &v
	}
	if acc.max == nil || numeric(v) > numeric(*acc.max) {
		acc.max = &v
	}
}

func numeric(v ltype.Value) float64 {
	switch {
	case v.Tag == ltype.Float || v.Tag == ltype.Double || v.Tag == ltype.Decimal:
		return v.Float64
	case v.Uint != 0:
		return float64(v.Uint)
	default:
		return float64(v.Int)
	}
}

func (o *OperatorGroup) materialize() (*chunk.DataChunk, error) {
	names := make([]string, 0, len(o.GroupBy)+len(o.Aggregates))
	types := make([]ltype.Type, 0, len(o.GroupBy)+len(o.Aggregates))
	for i := range o.GroupBy {
		names = append(names, fmt.Sprintf("group_%d", i))
		types = append(types, ltype.NewStringLiteral())
	}
	for _, agg := range o.Aggregates {
		names = append(names, agg.Alias)
		types = append(types, aggResultType(agg))
	}

	out, err := chunk.NewDataChunk(names, types, len(o.groupOrder))
	if err != nil {
		return nil, err
	}
	for row, key := range o.groupOrder {
		g := o.groups[key]
		col := 0
		for _, kv := range g.keyValues {
			if err := out.Column(col).SetValue(row, kv); err != nil {
				return nil, err
			}
			col++
		}
		for i, agg := range o.Aggregates {
			v := aggResult(agg, g.acc[i])
			if err := out.Column(col).SetValue(row, v); err != nil {
				return nil, err
			}
			col++
		}
	}
	if err := out.SetCardinality(len(o.groupOrder)); err != nil {
		return nil, err
	}
	return out, nil
}

func aggResultType(agg Aggregate) ltype.Type {
	switch agg.Func {
	case Count:
		return ltype.NewBigInt()
	case Avg:
		return ltype.NewDouble()
	default:
		return ltype.NewDouble()
	}
}

func aggResult(agg Aggregate, acc *aggAccumulator) ltype.Value {
	switch agg.Func {
	case Count:
		return ltype.IntValue(ltype.BigInt, acc.count)
	case Sum:
		return ltype.FloatValue(ltype.Double, acc.sum)
	case Avg:
		if acc.count == 0 {
			return ltype.FloatValue(ltype.Double, math.NaN())
		}
		return ltype.FloatValue(ltype.Double, acc.sum/float64(acc.count))
	case Min:
		if acc.min == nil {
			return ltype.NullValue(ltype.NewDouble())
		}
		return ltype.FloatValue(ltype.Double, numeric(*acc.min))
	case Max:
		if acc.max == nil {
			return ltype.NullValue(ltype.NewDouble())
		}
		return ltype.FloatValue(ltype.Double, numeric(*acc.max))
	default:
		return ltype.Value{}
	}
}

func (o *OperatorGroup) Modified() []int64 { return nil }
