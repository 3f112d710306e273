package ltype

// Equal reports whether a and b are the same logical type: tags match and,
// recursively, all children — including aliases — match. Two STRUCT types
// with the same fields in a different order are not equal; field order is
// significant (it is column/struct-declaration order).
func Equal(a, b Type) bool {
	if a.Tag != b.Tag || a.Alias != b.Alias {
		return false
	}
	switch a.Tag {
	case Decimal:
		return a.Precision == b.Precision && a.Scale == b.Scale
	case Struct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case Array:
		if !equalIntPtr(a.Size, b.Size) {
			return false
		}
		return equalTypePtr(a.Elem, b.Elem)
	case List:
		return equalTypePtr(a.Elem, b.Elem)
	case Map:
		return equalTypePtr(a.Elem, b.Elem) && equalTypePtr(a.Value, b.Value)
	case Enum:
		if len(a.EnumValues) != len(b.EnumValues) {
			return false
		}
		for i := range a.EnumValues {
			if a.EnumValues[i] != b.EnumValues[i] {
				return false
			}
		}
		return true
	case Union:
		if len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if !Equal(a.Variants[i], b.Variants[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func equalTypePtr(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(*a, *b)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// numericFamily groups primitives sharing a canonical numeric family. Two
// types are promotable iff they share a family; promotion itself is never
// performed implicitly by this core — see computed schema union policy.
var numericFamily = map[Tag]int{
	TinyInt: 1, SmallInt: 1, Integer: 1, BigInt: 1, HugeInt: 1,
	UTinyInt: 2, USmallInt: 2, UInteger: 2, UBigInt: 2, UHugeInt: 2,
	Float: 3, Double: 3, Decimal: 3,
}

// IsPromotable reports whether a and b are two primitives sharing a
// canonical numeric family (signed integer, unsigned integer, or
// floating/decimal). It does not perform widening — this core keeps type
// changes explicit and additive (see internal/schema's union promotion).
func IsPromotable(a, b Type) bool {
	fa, ok := numericFamily[a.Tag]
	if !ok {
		return false
	}
	fb, ok := numericFamily[b.Tag]
	if !ok {
		return false
	}
	return fa == fb
}
