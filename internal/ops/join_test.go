package ops

import (
	"testing"

	"coldb/internal/chunk"
	"coldb/internal/filter"
	"coldb/internal/ltype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customersChunk(t *testing.T) *chunk.DataChunk {
	t.Helper()
	names := []string{"cust_id", "name"}
	types := []ltype.Type{ltype.NewBigInt(), ltype.NewStringLiteral()}
	c, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	rows := []struct {
		id   int64
		name string
	}{{1, "Ann"}, {2, "Bo"}}
	for i, r := range rows {
		require.NoError(t, c.Column(0).SetValue(i, ltype.IntValue(ltype.BigInt, r.id)))
		require.NoError(t, c.Column(1).SetValue(i, ltype.StringValue(r.name)))
	}
	require.NoError(t, c.SetCardinality(len(rows)))
	return c
}

func ordersForJoin(t *testing.T) *chunk.DataChunk {
	t.Helper()
	names := []string{"cust_id", "amount"}
	types := []ltype.Type{ltype.NewBigInt(), ltype.NewBigInt()}
	c, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	rows := []struct {
		id     int64
		amount int64
	}{{1, 100}, {3, 50}}
	for i, r := range rows {
		require.NoError(t, c.Column(0).SetValue(i, ltype.IntValue(ltype.BigInt, r.id)))
		require.NoError(t, c.Column(1).SetValue(i, ltype.IntValue(ltype.BigInt, r.amount)))
	}
	require.NoError(t, c.SetCardinality(len(rows)))
	return c
}

func joinPredicate() *filter.Expr {
	e := filter.Leaf(filter.Eq, filter.ColumnKey(0, filter.Left), filter.ColumnKey(0, filter.Right))
	return &e
}

func TestOperatorJoinInner(t *testing.T) {
	left := &oneShotOperator{chunk: customersChunk(t)}
	right := &oneShotOperator{chunk: ordersForJoin(t)}
	join := &OperatorJoin{Left: left, Right: right, Predicate: joinPredicate(), Type: InnerJoin}
	require.NoError(t, join.Prepare())
	out, err := join.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 1, out.Cardinality())
	assert.Equal(t, "Ann", out.Column(1).Value(0).Str)
	assert.Equal(t, int64(100), out.Column(3).Value(0).Int)
}

func TestOperatorJoinLeftKeepsUnmatched(t *testing.T) {
	left := &oneShotOperator{chunk: customersChunk(t)}
	right := &oneShotOperator{chunk: ordersForJoin(t)}
	join := &OperatorJoin{Left: left, Right: right, Predicate: joinPredicate(), Type: LeftJoin}
	require.NoError(t, join.Prepare())
	out, err := join.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.Cardinality())
}

func TestOperatorJoinFullKeepsBothUnmatched(t *testing.T) {
	left := &oneShotOperator{chunk: customersChunk(t)}
	right := &oneShotOperator{chunk: ordersForJoin(t)}
	join := &OperatorJoin{Left: left, Right: right, Predicate: joinPredicate(), Type: FullJoin}
	require.NoError(t, join.Prepare())
	out, err := join.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 3, out.Cardinality())
}

func TestOperatorJoinCross(t *testing.T) {
	left := &oneShotOperator{chunk: customersChunk(t)}
	right := &oneShotOperator{chunk: ordersForJoin(t)}
	join := &OperatorJoin{Left: left, Right: right, Type: CrossJoin}
	require.NoError(t, join.Prepare())
	out, err := join.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 4, out.Cardinality())
}

func TestOperatorJoinModifiedIsAlwaysNil(t *testing.T) {
	left := &oneShotOperator{chunk: customersChunk(t)}
	right := &oneShotOperator{chunk: ordersForJoin(t)}
	join := &OperatorJoin{Left: left, Right: right, Type: CrossJoin}
	require.NoError(t, join.Prepare())
	_, err := join.Execute(NewContext())
	require.NoError(t, err)
	assert.Nil(t, join.Modified())
}
