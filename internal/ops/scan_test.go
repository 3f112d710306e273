package ops

import (
	"testing"

	"coldb/internal/chunk"
	"coldb/internal/filter"
	"coldb/internal/ltype"
	"coldb/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docID(n byte) table.DocumentID {
	var id table.DocumentID
	id[len(id)-1] = n
	return id
}

func pkOf(v ltype.Value) (table.DocumentID, bool) {
	if v.Tag != ltype.StringLiteral || len(v.Str) != 1 {
		return table.DocumentID{}, false
	}
	return docID(v.Str[0]), true
}

func newPeopleTable(t *testing.T, rows []struct {
	id  byte
	age int64
}) *table.Table {
	t.Helper()
	tbl := table.New([]string{"_id", "age"}, []ltype.Type{ltype.NewStringLiteral(), ltype.NewBigInt()}, chunk.DefaultCapacity)
	c, err := chunk.NewDataChunk([]string{"_id", "age"}, []ltype.Type{ltype.NewStringLiteral(), ltype.NewBigInt()}, chunk.DefaultCapacity)
	require.NoError(t, err)
	for i, r := range rows {
		require.NoError(t, c.Column(0).SetValue(i, ltype.StringValue(string(r.id))))
		require.NoError(t, c.Column(1).SetValue(i, ltype.IntValue(ltype.BigInt, r.age)))
	}
	require.NoError(t, c.SetCardinality(len(rows)))
	require.NoError(t, tbl.Append(tbl.InitializeAppend(), c, "_id", pkOf))
	return tbl
}

func TestFullScanReturnsAllRows(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}, {'b', 20}, {'c', 30}})

	scan := &FullScan{Table: tbl, Limit: -1}
	require.NoError(t, scan.Prepare())
	out, err := scan.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 3, out.Cardinality())

	next, err := scan.Execute(NewContext())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestFullScanAppliesLimit(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}, {'b', 20}, {'c', 30}})

	scan := &FullScan{Table: tbl, Limit: 2}
	require.NoError(t, scan.Prepare())
	out, err := scan.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.Cardinality())
}

func TestFullScanZeroLimitNeverTouchesTable(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}})

	scan := &FullScan{Table: tbl, Limit: 0}
	require.NoError(t, scan.Prepare())
	out, err := scan.Execute(NewContext())
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFullScanPushdownFilter(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}, {'b', 20}, {'c', 30}})

	pred := filter.Leaf(filter.Gt, filter.ColumnKey(1, filter.Left), filter.ConstKey(ltype.IntValue(ltype.BigInt, 15)))
	scan := &FullScan{Table: tbl, Predicate: &pred, Limit: -1}
	require.NoError(t, scan.Prepare())
	out, err := scan.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.Cardinality())
}

func TestFullScanNotPredicateFallsBackToPostFilter(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}, {'b', 20}, {'c', 30}})

	inner := filter.Leaf(filter.Eq, filter.ColumnKey(1, filter.Left), filter.ConstKey(ltype.IntValue(ltype.BigInt, 20)))
	pred := filter.Not(inner)
	scan := &FullScan{Table: tbl, Predicate: &pred, Limit: -1}
	require.NoError(t, scan.Prepare())

	var total int
	for {
		out, err := scan.Execute(NewContext())
		require.NoError(t, err)
		if out == nil {
			break
		}
		total += out.Cardinality()
	}
	assert.Equal(t, 2, total)
}

func TestPrimaryKeyScanFindsRows(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}, {'b', 20}})

	pk := &PrimaryKeyScan{Table: tbl, IDs: []table.DocumentID{docID('b'), docID('z')}}
	require.NoError(t, pk.Prepare())
	out, err := pk.Execute(NewContext())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 1, out.Cardinality())
	assert.Equal(t, int64(20), out.Column(1).Value(0).Int)
}

func TestPrimaryKeyScanAfterDeleteSkipsRow(t *testing.T) {
	tbl := newPeopleTable(t, []struct {
		id  byte
		age int64
	}{{'a', 10}})
	rowID, ok := tbl.GetRowID(docID('a'))
	require.True(t, ok)
	tbl.DeleteRows(tbl.InitializeDelete(), []int64{rowID}, 1)

	pk := &PrimaryKeyScan{Table: tbl, IDs: []table.DocumentID{docID('a')}}
	require.NoError(t, pk.Prepare())
	out, err := pk.Execute(NewContext())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Cardinality())
}
