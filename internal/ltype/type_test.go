package ltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualPrimitives(t *testing.T) {
	assert.True(t, Equal(NewInteger(), NewInteger()))
	assert.False(t, Equal(NewInteger(), NewBigInt()))
}

func TestEqualStructFieldOrderMatters(t *testing.T) {
	a := NewStruct(StructField{Name: "x", Type: NewInteger()}, StructField{Name: "y", Type: NewStringLiteral()})
	b := NewStruct(StructField{Name: "y", Type: NewStringLiteral()}, StructField{Name: "x", Type: NewInteger()})
	assert.False(t, Equal(a, b))
	assert.True(t, Equal(a, a))
}

func TestEqualDecimalPrecisionScale(t *testing.T) {
	assert.True(t, Equal(NewDecimal(10, 2), NewDecimal(10, 2)))
	assert.False(t, Equal(NewDecimal(10, 2), NewDecimal(10, 3)))
}

func TestEqualArraySize(t *testing.T) {
	three := 3
	four := 4
	assert.True(t, Equal(NewArray(NewInteger(), &three), NewArray(NewInteger(), &three)))
	assert.False(t, Equal(NewArray(NewInteger(), &three), NewArray(NewInteger(), &four)))
	assert.False(t, Equal(NewArray(NewInteger(), &three), NewArray(NewInteger(), nil)))
	assert.True(t, Equal(NewArray(NewInteger(), nil), NewArray(NewInteger(), nil)))
}

func TestEqualUnionVariantOrderMatters(t *testing.T) {
	a := NewUnion(NewInteger(), NewStringLiteral())
	b := NewUnion(NewStringLiteral(), NewInteger())
	assert.False(t, Equal(a, b))
	assert.True(t, Equal(a, NewUnion(NewInteger(), NewStringLiteral())))
}

func TestIsPromotableNumericFamilies(t *testing.T) {
	assert.True(t, IsPromotable(NewInteger(), NewBigInt()))
	assert.True(t, IsPromotable(NewUInteger(), NewUBigInt()))
	assert.True(t, IsPromotable(NewFloat(), NewDouble()))
	assert.False(t, IsPromotable(NewInteger(), NewUInteger()))
	assert.False(t, IsPromotable(NewInteger(), NewStringLiteral()))
	assert.False(t, IsPromotable(NewStringLiteral(), NewStringLiteral()))
}

func TestPhysicalLayout(t *testing.T) {
	assert.Equal(t, LayoutBit, Physical(NewBoolean()))
	assert.Equal(t, LayoutByte4, Physical(NewInteger()))
	assert.Equal(t, LayoutByte8, Physical(NewBigInt()))
	assert.Equal(t, LayoutByte16, Physical(NewHugeInt()))
	assert.Equal(t, LayoutVarLen, Physical(NewStringLiteral()))
	assert.Equal(t, LayoutNested, Physical(NewStruct()))

	small := NewEnum(EnumEntry{Name: "a", Ordinal: 0})
	assert.Equal(t, LayoutByte1, Physical(small))
}

func TestTypeStringRendersReadably(t *testing.T) {
	assert.Equal(t, "DECIMAL(10,2)", NewDecimal(10, 2).String())
	assert.Equal(t, "INTEGER AS age", NewInteger().WithAlias("age").String())
}
