package ops

import (
	"testing"

	"coldb/internal/chunk"
	"coldb/internal/ltype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsortedAges(t *testing.T) *chunk.DataChunk {
	t.Helper()
	names := []string{"name", "age"}
	types := []ltype.Type{ltype.NewStringLiteral(), ltype.NewBigInt()}
	c, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	rows := []struct {
		name string
		age  int64
	}{{"c", 30}, {"a", 10}, {"b", 20}}
	for i, r := range rows {
		require.NoError(t, c.Column(0).SetValue(i, ltype.StringValue(r.name)))
		require.NoError(t, c.Column(1).SetValue(i, ltype.IntValue(ltype.BigInt, r.age)))
	}
	require.NoError(t, c.SetCardinality(len(rows)))
	return c
}

func TestOperatorSortAscending(t *testing.T) {
	child := &oneShotOperator{chunk: unsortedAges(t)}
	sortOp := &OperatorSort{Child: child, Keys: []SortKey{{Column: 1, Desc: false}}}
	require.NoError(t, sortOp.Prepare())
	out, err := sortOp.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	got := make([]int64, out.Cardinality())
	for i := range got {
		got[i] = out.Column(1).Value(i).Int
	}
	assert.Equal(t, []int64{10, 20, 30}, got)
}

func TestOperatorSortDescending(t *testing.T) {
	child := &oneShotOperator{chunk: unsortedAges(t)}
	sortOp := &OperatorSort{Child: child, Keys: []SortKey{{Column: 1, Desc: true}}}
	require.NoError(t, sortOp.Prepare())
	out, err := sortOp.Execute(NewContext())
	require.NoError(t, err)
	got := make([]int64, out.Cardinality())
	for i := range got {
		got[i] = out.Column(1).Value(i).Int
	}
	assert.Equal(t, []int64{30, 20, 10}, got)
}

func TestOperatorSortStableOnTiedFirstKey(t *testing.T) {
	names := []string{"group", "seq"}
	types := []ltype.Type{ltype.NewStringLiteral(), ltype.NewBigInt()}
	c, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	rows := []struct {
		group string
		seq   int64
	}{{"x", 1}, {"x", 2}, {"x", 3}}
	for i, r := range rows {
		require.NoError(t, c.Column(0).SetValue(i, ltype.StringValue(r.group)))
		require.NoError(t, c.Column(1).SetValue(i, ltype.IntValue(ltype.BigInt, r.seq)))
	}
	require.NoError(t, c.SetCardinality(len(rows)))

	child := &oneShotOperator{chunk: c}
	sortOp := &OperatorSort{Child: child, Keys: []SortKey{{Column: 0, Desc: false}}}
	require.NoError(t, sortOp.Prepare())
	out, err := sortOp.Execute(NewContext())
	require.NoError(t, err)
	got := make([]int64, out.Cardinality())
	for i := range got {
		got[i] = out.Column(1).Value(i).Int
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestOperatorSortEmptyChildReturnsNil(t *testing.T) {
	child := &oneShotOperator{chunk: nil}
	child.done = true
	sortOp := &OperatorSort{Child: child}
	require.NoError(t, sortOp.Prepare())
	out, err := sortOp.Execute(NewContext())
	require.NoError(t, err)
	assert.Nil(t, out)
}
