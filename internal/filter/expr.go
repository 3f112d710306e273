// Package filter implements comparison expressions and the pushdown filter
// tree: the predicate language shared by in-memory row evaluation (used by
// join/delete/update) and scan pushdown (used by full_scan).
package filter

import (
	"regexp"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

// Op is a comparison operator.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
	Regex
)

// Side identifies which input row a key_t reads from, for join predicates
// that compare a left row against a right row.
type Side int

const (
	Undefined Side = iota
	Left
	Right
)

// Key names where a comparison operand comes from: a column reference on
// one side of the row pair, a bound parameter, or a constant value.
type Key struct {
	Column int // column index, valid when IsParam is false and Value is nil
	Side   Side
	Param  int // parameter id, valid when IsParam
	IsParam bool
	Value   *ltype.Value // constant, valid when non-nil and IsParam is false
}

// ColumnKey builds a Key referencing a column on the given side.
func ColumnKey(column int, side Side) Key { return Key{Column: column, Side: side} }

// ParamKey builds a Key referencing a bound parameter.
func ParamKey(id int) Key { return Key{Param: id, IsParam: true} }

// ConstKey builds a Key holding a literal constant.
func ConstKey(v ltype.Value) Key { return Key{Value: &v} }

// ParamLookup resolves a parameter id to its bound value during evaluation.
type ParamLookup func(id int) (ltype.Value, bool)

// Expr is a comparison expression or a logical union node forming the
// predicate tree. Union nodes combine Children; a leaf (Op set, Children
// nil) compares LHS against RHS.
type Expr struct {
	// Logical combinator, set only on union nodes.
	And  bool
	Or   bool
	Not  bool
	Children []Expr

	// Leaf comparison, set only when And/Or/Not are all false.
	CmpOp Op
	LHS   Key
	RHS   Key
}

// Leaf builds a comparison leaf.
func Leaf(op Op, lhs, rhs Key) Expr { return Expr{CmpOp: op, LHS: lhs, RHS: rhs} }

// AllTrue and AllFalse are the sentinel predicates: AllTrue matches every
// row, AllFalse matches none.
var (
	AllTrue  = Expr{And: true} // empty AND = vacuously true
	AllFalse = Expr{Or: true}  // empty OR = vacuously false
)

func And(children ...Expr) Expr { return Expr{And: true, Children: children} }
func Or(children ...Expr) Expr  { return Expr{Or: true, Children: children} }
func Not(child Expr) Expr       { return Expr{Not: true, Children: []Expr{child}} }

// Row is one evaluable row: a chunk plus a row index. Single-chunk
// evaluation (scan filters, delete/update predicates) supplies only Left;
// join evaluation supplies both.
type Row struct {
	Chunk *chunk.DataChunk
	Index int
}

// Eval evaluates e against leftRow (and, for join-style two-row
// predicates, rightRow) resolving parameters through params.
func (e Expr) Eval(leftRow Row, rightRow *Row, params ParamLookup) bool {
	if e.And {
		for _, c := range e.Children {
			if !c.Eval(leftRow, rightRow, params) {
				return false
			}
		}
		return true
	}
	if e.Or {
		for _, c := range e.Children {
			if c.Eval(leftRow, rightRow, params) {
				return true
			}
		}
		return false
	}
	if e.Not {
		return !e.Children[0].Eval(leftRow, rightRow, params)
	}

	lv, lok := resolve(e.LHS, leftRow, rightRow, params)
	rv, rok := resolve(e.RHS, leftRow, rightRow, params)
	if !lok || !rok {
		return false
	}
	return compare(e.CmpOp, lv, rv)
}

func resolve(k Key, leftRow Row, rightRow *Row, params ParamLookup) (ltype.Value, bool) {
	if k.Value != nil {
		return *k.Value, true
	}
	if k.IsParam {
		if params == nil {
			return ltype.Value{}, false
		}
		return params(k.Param)
	}
	row := leftRow
	if k.Side == Right {
		if rightRow == nil {
			return ltype.Value{}, false
		}
		row = *rightRow
	}
	if k.Column < 0 || k.Column >= row.Chunk.ColumnCount() {
		return ltype.Value{}, false
	}
	col := row.Chunk.Column(k.Column)
	if !col.Valid(row.Index) {
		return ltype.Value{}, false
	}
	return col.Value(row.Index), true
}

func compare(op Op, a, b ltype.Value) bool {
	if op == Regex {
		re, err := regexp.Compile(b.Str)
		if err != nil {
			return false
		}
		return re.MatchString(a.Str)
	}

	c, ok := compareValues(a, b)
	if !ok {
		return op == Ne
	}
	switch op {
	case Eq:
		return c == 0
	case Ne:
		return c != 0
	case Lt:
		return c < 0
	case Le:
		return c <= 0
	case Gt:
		return c > 0
	case Ge:
		return c >= 0
	default:
		return false
	}
}

// Compare orders two values of the same logical family, exported for block
// min/max bookkeeping (internal/table, internal/blockcache). (0, false)
// when the two values aren't comparable.
func Compare(a, b ltype.Value) (int, bool) {
	return compareValues(a, b)
}

// compareValues orders two values of the same logical family; (0, false)
// when the two values aren't comparable (e.g. mismatched tags across a
// union's variants).
func compareValues(a, b ltype.Value) (int, bool) {
	switch {
	case isIntTag(a.Tag) && isIntTag(b.Tag):
		return cmpInt64(a.Int, b.Int), true
	case isUintTag(a.Tag) && isUintTag(b.Tag):
		return cmpUint64(a.Uint, b.Uint), true
	case isFloatTag(a.Tag) && isFloatTag(b.Tag):
		return cmpFloat64(a.Float64, b.Float64), true
	case a.Tag == ltype.StringLiteral && b.Tag == ltype.StringLiteral:
		return cmpString(a.Str, b.Str), true
	case a.Tag == ltype.Boolean && b.Tag == ltype.Boolean:
		return cmpBool(a.Bool, b.Bool), true
	default:
		return 0, false
	}
}

func isIntTag(t ltype.Tag) bool {
	switch t {
	case ltype.TinyInt, ltype.SmallInt, ltype.Integer, ltype.BigInt, ltype.HugeInt, ltype.Date, ltype.Timestamp, ltype.Interval:
		return true
	}
	return false
}

func isUintTag(t ltype.Tag) bool {
	switch t {
	case ltype.UTinyInt, ltype.USmallInt, ltype.UInteger, ltype.UBigInt, ltype.UHugeInt:
		return true
	}
	return false
}

func isFloatTag(t ltype.Tag) bool {
	return t == ltype.Float || t == ltype.Double || t == ltype.Decimal
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}
