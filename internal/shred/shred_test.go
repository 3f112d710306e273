package shred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldb/internal/schema"
)

func TestSchemaEvolutionScenario(t *testing.T) {
	s := schema.New()
	sh := New(s)

	docs := []Document{
		Document(`{"_id":1,"name":"Alice"}`),
		Document(`{"_id":2,"name":"Bob","age":25}`),
		Document(`{"_id":3,"name":"Charlie","age":30,"city":"NYC"}`),
	}
	out, _, err := sh.ShredBatch(docs, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"_id", "name", "age", "city"}, out.ColumnNames())
	assert.Equal(t, 3, out.Cardinality())
}

func TestUnionPromotionAndNullOnMissing(t *testing.T) {
	s := schema.New()
	sh := New(s)

	docs := []Document{
		Document(`{"_id":1,"age":30}`),
		Document(`{"_id":2,"age":"thirty"}`),
		Document(`{"_id":3,"age":true}`),
	}
	_, _, err := sh.ShredBatch(docs, 0)
	require.NoError(t, err)
	assert.True(t, s.IsUnion("age"))

	// Scenario 3: a later document omitting the union column.
	out, _, err := sh.ShredBatch([]Document{Document(`{"_id":4,"other":"data"}`)}, 0)
	require.NoError(t, err)

	ageIdx, ok := out.ColumnIndex("age")
	require.True(t, ok)
	assert.False(t, out.Column(ageIdx).Valid(0))
}

func TestNestedPathsProduceSlashSeparatedColumns(t *testing.T) {
	s := schema.New()
	sh := New(s)
	out, _, err := sh.ShredBatch([]Document{Document(`{"user":{"name":"Ann"}}`)}, 0)
	require.NoError(t, err)

	_, ok := out.ColumnIndex("user/name")
	assert.True(t, ok)
}

func TestArrayElementsGetIndexedPaths(t *testing.T) {
	s := schema.New()
	sh := New(s)
	out, _, err := sh.ShredBatch([]Document{Document(`{"tags":["a","b"]}`)}, 0)
	require.NoError(t, err)

	_, ok0 := out.ColumnIndex("tags/0")
	_, ok1 := out.ColumnIndex("tags/1")
	assert.True(t, ok0)
	assert.True(t, ok1)
}

func TestIntegerVsFloatClassification(t *testing.T) {
	s := schema.New()
	sh := New(s)
	out, _, err := sh.ShredBatch([]Document{Document(`{"count":3,"ratio":1.5}`)}, 0)
	require.NoError(t, err)

	countIdx, ok := out.ColumnIndex("count")
	require.True(t, ok)
	ratioIdx, ok := out.ColumnIndex("ratio")
	require.True(t, ok)

	assert.EqualValues(t, 3, out.Column(countIdx).Value(0).Int)
	assert.InDelta(t, 1.5, out.Column(ratioIdx).Value(0).Float64, 1e-9)
}
