package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coldb/internal/ltype"
)

func rangeOf(min, max ltype.Value) BlockRange {
	return func(int) (ltype.Value, ltype.Value, bool) { return min, max, true }
}

func TestCanSkipBlockEqOutsideRange(t *testing.T) {
	f := ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 50))
	rng := rangeOf(ltype.IntValue(ltype.BigInt, 0), ltype.IntValue(ltype.BigInt, 10))
	assert.True(t, f.CanSkipBlock(rng))
}

func TestCanSkipBlockEqInsideRange(t *testing.T) {
	f := ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 5))
	rng := rangeOf(ltype.IntValue(ltype.BigInt, 0), ltype.IntValue(ltype.BigInt, 10))
	assert.False(t, f.CanSkipBlock(rng))
}

func TestCanSkipBlockGtAboveMax(t *testing.T) {
	f := ConstLeaf(Gt, 0, ltype.IntValue(ltype.BigInt, 100))
	rng := rangeOf(ltype.IntValue(ltype.BigInt, 0), ltype.IntValue(ltype.BigInt, 10))
	assert.True(t, f.CanSkipBlock(rng))
}

func TestCanSkipBlockLtBelowMin(t *testing.T) {
	f := ConstLeaf(Lt, 0, ltype.IntValue(ltype.BigInt, -5))
	rng := rangeOf(ltype.IntValue(ltype.BigInt, 0), ltype.IntValue(ltype.BigInt, 10))
	assert.True(t, f.CanSkipBlock(rng))
}

func TestCanSkipBlockNoRangeKnownNeverSkips(t *testing.T) {
	f := ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 5))
	unknown := func(int) (ltype.Value, ltype.Value, bool) { return ltype.Value{}, ltype.Value{}, false }
	assert.False(t, f.CanSkipBlock(unknown))
}

func TestCanSkipBlockAndSkipsIfAnyChildExcludes(t *testing.T) {
	f := AndFilter(
		ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 50)),
		ConstLeaf(Eq, 1, ltype.IntValue(ltype.BigInt, 5)),
	)
	rng := func(col int) (ltype.Value, ltype.Value, bool) {
		return ltype.IntValue(ltype.BigInt, 0), ltype.IntValue(ltype.BigInt, 10), true
	}
	assert.True(t, f.CanSkipBlock(rng))
}

func TestCanSkipBlockOrRequiresAllChildrenExcluded(t *testing.T) {
	f := OrFilter(
		ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 50)),
		ConstLeaf(Eq, 0, ltype.IntValue(ltype.BigInt, 5)),
	)
	rng := rangeOf(ltype.IntValue(ltype.BigInt, 0), ltype.IntValue(ltype.BigInt, 10))
	assert.False(t, f.CanSkipBlock(rng))
}
