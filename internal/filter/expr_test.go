package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldb/internal/chunk"
	"coldb/internal/ltype"
)

func singleColumnRow(t *testing.T, colType ltype.Type, val ltype.Value) Row {
	t.Helper()
	c, err := chunk.NewDataChunk([]string{"v"}, []ltype.Type{colType}, 1)
	require.NoError(t, err)
	require.NoError(t, c.Column(0).SetValue(0, val))
	require.NoError(t, c.SetCardinality(1))
	return Row{Chunk: c, Index: 0}
}

func TestLeafComparisons(t *testing.T) {
	row := singleColumnRow(t, ltype.NewBigInt(), ltype.IntValue(ltype.BigInt, 30))

	cases := []struct {
		op   Op
		rhs  int64
		want bool
	}{
		{Eq, 30, true},
		{Eq, 31, false},
		{Ne, 31, true},
		{Lt, 31, true},
		{Le, 30, true},
		{Gt, 29, true},
		{Ge, 30, true},
	}
	for _, c := range cases {
		e := Leaf(c.op, ColumnKey(0, Left), ConstKey(ltype.IntValue(ltype.BigInt, c.rhs)))
		assert.Equal(t, c.want, e.Eval(row, nil, nil))
	}
}

func TestAndOrNot(t *testing.T) {
	row := singleColumnRow(t, ltype.NewBigInt(), ltype.IntValue(ltype.BigInt, 30))
	gt20 := Leaf(Gt, ColumnKey(0, Left), ConstKey(ltype.IntValue(ltype.BigInt, 20)))
	lt10 := Leaf(Lt, ColumnKey(0, Left), ConstKey(ltype.IntValue(ltype.BigInt, 10)))

	assert.True(t, And(gt20).Eval(row, nil, nil))
	assert.False(t, And(gt20, lt10).Eval(row, nil, nil))
	assert.True(t, Or(gt20, lt10).Eval(row, nil, nil))
	assert.True(t, Not(lt10).Eval(row, nil, nil))
}

func TestSentinels(t *testing.T) {
	row := singleColumnRow(t, ltype.NewBigInt(), ltype.IntValue(ltype.BigInt, 1))
	assert.True(t, AllTrue.Eval(row, nil, nil))
	assert.False(t, AllFalse.Eval(row, nil, nil))
}

func TestParamResolution(t *testing.T) {
	row := singleColumnRow(t, ltype.NewBigInt(), ltype.IntValue(ltype.BigInt, 30))
	e := Leaf(Eq, ColumnKey(0, Left), ParamKey(0))
	lookup := func(id int) (ltype.Value, bool) { return ltype.IntValue(ltype.BigInt, 30), true }
	assert.True(t, e.Eval(row, nil, lookup))
}

func TestRegexLeaf(t *testing.T) {
	row := singleColumnRow(t, ltype.NewStringLiteral(), ltype.StringValue("hello world"))
	e := Leaf(Regex, ColumnKey(0, Left), ConstKey(ltype.StringValue("^hello")))
	assert.True(t, e.Eval(row, nil, nil))

	e2 := Leaf(Regex, ColumnKey(0, Left), ConstKey(ltype.StringValue("^world")))
	assert.False(t, e2.Eval(row, nil, nil))
}

func TestFromExprRefusesNot(t *testing.T) {
	lt10 := Leaf(Lt, ColumnKey(0, Left), ConstKey(ltype.IntValue(ltype.BigInt, 10)))
	_, ok := FromExpr(Not(lt10), nil)
	assert.False(t, ok)
}

func TestFromExprConvertsAndOr(t *testing.T) {
	gt20 := Leaf(Gt, ColumnKey(0, Left), ConstKey(ltype.IntValue(ltype.BigInt, 20)))
	lt100 := Leaf(Lt, ColumnKey(0, Left), ConstKey(ltype.IntValue(ltype.BigInt, 100)))

	f, ok := FromExpr(And(gt20, lt100), nil)
	require.True(t, ok)

	row := singleColumnRow(t, ltype.NewBigInt(), ltype.IntValue(ltype.BigInt, 30))
	assert.True(t, f.EvalChunkRow(row.Chunk, row.Index))
}

func TestFromExprRefusesColumnToColumn(t *testing.T) {
	e := Leaf(Eq, ColumnKey(0, Left), ColumnKey(1, Left))
	_, ok := FromExpr(e, nil)
	assert.False(t, ok)
}

func TestColumnsReferencedDFSOrder(t *testing.T) {
	f := AndFilter(ConstLeaf(Eq, 2, ltype.IntValue(ltype.BigInt, 1)), ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 2)))
	assert.Equal(t, []int{2, 0}, f.ColumnsReferenced())
}
