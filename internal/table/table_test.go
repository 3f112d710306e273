package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldb/internal/chunk"
	"coldb/internal/filter"
	"coldb/internal/ltype"
)

func docID(n byte) DocumentID {
	var id DocumentID
	id[11] = n
	return id
}

func pkOf(v ltype.Value) (DocumentID, bool) {
	if v.Tag != ltype.UBigInt && v.Tag != ltype.BigInt {
		return DocumentID{}, false
	}
	return docID(byte(v.Int + v.Uint)), true
}

func newChunkWithRows(t *testing.T, names []string, types []ltype.Type, rows [][]ltype.Value) *chunk.DataChunk {
	t.Helper()
	c, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	for r, row := range rows {
		for col, v := range row {
			require.NoError(t, c.Column(col).SetValue(r, v))
		}
	}
	require.NoError(t, c.SetCardinality(len(rows)))
	return c
}

func TestAppendAssignsDenseRowIDs(t *testing.T) {
	names := []string{"_id", "name"}
	types := []ltype.Type{ltype.NewBigInt(), ltype.NewStringLiteral()}
	tbl := New(names, types, 0)

	c := newChunkWithRows(t, names, types, [][]ltype.Value{
		{ltype.IntValue(ltype.BigInt, 1), ltype.StringValue("Alice")},
		{ltype.IntValue(ltype.BigInt, 2), ltype.StringValue("Bob")},
	})

	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "_id", pkOf))
	assert.EqualValues(t, 2, tbl.RowCount())

	rowID, ok := tbl.GetRowID(docID(1))
	require.True(t, ok)
	assert.EqualValues(t, 0, rowID)
}

func TestScanReturnsAliveRowsUpToLimit(t *testing.T) {
	names := []string{"_id", "name"}
	types := []ltype.Type{ltype.NewBigInt(), ltype.NewStringLiteral()}
	tbl := New(names, types, 0)

	rows := make([][]ltype.Value, 0, 10)
	for i := int64(1); i <= 10; i++ {
		rows = append(rows, []ltype.Value{ltype.IntValue(ltype.BigInt, i), ltype.StringValue("User")})
	}
	c := newChunkWithRows(t, names, types, rows)
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "_id", pkOf))

	scanState := tbl.InitializeScan(nil, nil)
	out, err := chunk.NewDataChunk(names, types, 5)
	require.NoError(t, err)
	n, err := tbl.Scan(scanState, out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestDeleteThenScanReturnsZeroRows(t *testing.T) {
	names := []string{"_id"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)

	c := newChunkWithRows(t, names, types, [][]ltype.Value{
		{ltype.IntValue(ltype.BigInt, 1)},
		{ltype.IntValue(ltype.BigInt, 2)},
		{ltype.IntValue(ltype.BigInt, 3)},
	})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "_id", pkOf))

	deleted := tbl.DeleteRows(tbl.InitializeDelete(), []int64{0, 1, 2}, 3)
	assert.Equal(t, 3, deleted)

	scanState := tbl.InitializeScan(nil, nil)
	out, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	n, err := tbl.Scan(scanState, out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDeleteIsIdempotent(t *testing.T) {
	names := []string{"_id"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)
	c := newChunkWithRows(t, names, types, [][]ltype.Value{{ltype.IntValue(ltype.BigInt, 1)}})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "_id", pkOf))

	first := tbl.DeleteRows(tbl.InitializeDelete(), []int64{0}, 1)
	second := tbl.DeleteRows(tbl.InitializeDelete(), []int64{0}, 1)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.False(t, tbl.IsAlive(0))
}

func TestGetRowIDFailsAfterDelete(t *testing.T) {
	names := []string{"_id"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)
	c := newChunkWithRows(t, names, types, [][]ltype.Value{{ltype.IntValue(ltype.BigInt, 1)}})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "_id", pkOf))

	tbl.DeleteRows(tbl.InitializeDelete(), []int64{0}, 1)
	_, ok := tbl.GetRowID(docID(1))
	assert.False(t, ok)
}

func TestScanWithPushdownFilter(t *testing.T) {
	names := []string{"age"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)
	c := newChunkWithRows(t, names, types, [][]ltype.Value{
		{ltype.IntValue(ltype.BigInt, 10)},
		{ltype.IntValue(ltype.BigInt, 20)},
		{ltype.IntValue(ltype.BigInt, 30)},
	})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "", nil))

	f := filter.ConstLeaf(filter.Gt, 0, ltype.IntValue(ltype.BigInt, 15))
	scanState := tbl.InitializeScan(nil, f)
	out, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	n, err := tbl.Scan(scanState, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScanSkipsBlockProvenOutOfRangeByPushdown(t *testing.T) {
	names := []string{"age"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)
	c := newChunkWithRows(t, names, types, [][]ltype.Value{
		{ltype.IntValue(ltype.BigInt, 10)},
		{ltype.IntValue(ltype.BigInt, 20)},
	})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "", nil))

	min, max, ok := tbl.blocks.Range(0, 0)
	require.True(t, ok)
	assert.Equal(t, int64(10), min.Int)
	assert.Equal(t, int64(20), max.Int)

	f := filter.ConstLeaf(filter.Gt, 0, ltype.IntValue(ltype.BigInt, 1000))
	scanState := tbl.InitializeScan(nil, f)
	out, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	n, err := tbl.Scan(scanState, out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUpdateOverwritesCells(t *testing.T) {
	names := []string{"age"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)
	c := newChunkWithRows(t, names, types, [][]ltype.Value{{ltype.IntValue(ltype.BigInt, 10)}})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "", nil))

	update := newChunkWithRows(t, names, types, [][]ltype.Value{{ltype.IntValue(ltype.BigInt, 99)}})
	require.NoError(t, tbl.Update(tbl.InitializeUpdate(), []int64{0}, update))

	scanState := tbl.InitializeScan(nil, nil)
	out, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	n, err := tbl.Scan(scanState, out)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.EqualValues(t, 99, out.Column(0).Value(0).Int)
}

func TestFetchSkipsAbsentRowIDs(t *testing.T) {
	names := []string{"age"}
	types := []ltype.Type{ltype.NewBigInt()}
	tbl := New(names, types, 0)
	c := newChunkWithRows(t, names, types, [][]ltype.Value{
		{ltype.IntValue(ltype.BigInt, 10)},
		{ltype.IntValue(ltype.BigInt, 20)},
	})
	state := tbl.InitializeAppend()
	require.NoError(t, tbl.Append(state, c, "", nil))

	out, err := chunk.NewDataChunk(names, types, chunk.DefaultCapacity)
	require.NoError(t, err)
	n, err := tbl.Fetch(out, []int{0}, []int64{0, 999, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
