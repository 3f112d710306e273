package ops

import (
	"coldb/internal/chunk"
	"coldb/internal/filter"
)

// Aggregation is the orchestrator operator the planner builds for any
// statement with a GROUP BY or a bare aggregate select list: it wraps a
// full_scan (carrying the WHERE predicate, pushed down where possible) with
// operator_group and, when the statement also has an ORDER BY, operator_sort
// on top. It is itself just a thin composition and does no work of its own
// beyond wiring its stages together.
type Aggregation struct {
	Scan  *FullScan
	Group *OperatorGroup
	Sort  *OperatorSort // nil when the statement has no ORDER BY

	root Operator
}

// NewAggregation wires scan -> group -> (sort) and returns the composed
// operator. sortKeys may be nil.
func NewAggregation(scan *FullScan, groupBy []int, aggregates []Aggregate, sortKeys []SortKey) *Aggregation {
	a := &Aggregation{Scan: scan}
	a.Group = &OperatorGroup{Child: scan, GroupBy: groupBy, Aggregates: aggregates}
	var root Operator = a.Group
	if len(sortKeys) > 0 {
		a.Sort = &OperatorSort{Child: a.Group, Keys: sortKeys}
		root = a.Sort
	}
	a.root = root
	return a
}

func (a *Aggregation) Prepare() error { return a.root.Prepare() }

func (a *Aggregation) Execute(ctx *Context) (*chunk.DataChunk, error) {
	return a.root.Execute(ctx)
}

// Modified reports no row ids: aggregation is always a read path.
func (a *Aggregation) Modified() []int64 { return nil }

// PredicateFor is a convenience the planner uses to attach a WHERE clause to
// the wrapped scan before Prepare, since Aggregation itself owns no
// predicate state.
func (a *Aggregation) PredicateFor(pred *filter.Expr, params filter.ParamLookup) {
	a.Scan.Predicate = pred
	a.Scan.Params = params
}
