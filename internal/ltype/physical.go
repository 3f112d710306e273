package ltype

// Layout describes how a logical type is stored physically in a column
// vector: a fixed bit width, a variable-length byte payload, or a nested
// chunk (for STRUCT/ARRAY/LIST/MAP, which recurse into child vectors).
type Layout int

const (
	LayoutInvalid Layout = iota
	LayoutBit
	LayoutByte1
	LayoutByte2
	LayoutByte4
	LayoutByte8
	LayoutByte16
	LayoutVarLen
	LayoutNested
)

// Physical maps a logical type to its physical storage layout.
func Physical(t Type) Layout {
	switch t.Tag {
	case Boolean:
		return LayoutBit
	case TinyInt, UTinyInt:
		return LayoutByte1
	case SmallInt, USmallInt:
		return LayoutByte2
	case Integer, UInteger, Float, Date:
		return LayoutByte4
	case BigInt, UBigInt, Double, Timestamp, Interval:
		return LayoutByte8
	case HugeInt, UHugeInt, UUID, Decimal:
		return LayoutByte16
	case StringLiteral:
		return LayoutVarLen
	case Struct, Array, List, Map, Union:
		return LayoutNested
	case Enum:
		// Backed by the smallest unsigned integer that holds every ordinal.
		if len(t.EnumValues) <= 1<<8 {
			return LayoutByte1
		}
		if len(t.EnumValues) <= 1<<16 {
			return LayoutByte2
		}
		return LayoutByte4
	case NA:
		return LayoutBit
	default:
		return LayoutInvalid
	}
}

// ByteWidth returns the fixed byte width for a non-variable, non-nested
// layout, or 0 if the layout has no fixed width.
func (l Layout) ByteWidth() int {
	switch l {
	case LayoutBit:
		return 0
	case LayoutByte1:
		return 1
	case LayoutByte2:
		return 2
	case LayoutByte4:
		return 4
	case LayoutByte8:
		return 8
	case LayoutByte16:
		return 16
	default:
		return 0
	}
}

// Value is a logical value: a tag identifying which field is populated, so a
// single Value can represent every primitive, plus structured payloads for
// composite types. It is the in-memory representation a column vector's
// Value(i) returns and SetValue(i, v) accepts.
type Value struct {
	Tag Tag

	Bool    bool
	Int     int64
	Uint    uint64
	Float64 float64
	Str     string
	Bytes   []byte

	// STRUCT: field name -> value. ARRAY/LIST: ordered elements.
	// MAP: ordered key/value pairs (insertion order, not sorted).
	Struct map[string]Value
	Elems  []Value
	Pairs  []Pair

	// UNION: VariantTag identifies which of the union's Variants this value
	// holds (as returned by Schema.GetUnionTag), and Payload is the value
	// for that variant.
	VariantTag int
	Payload    *Value

	Null bool
}

// Pair is one key/value entry of a MAP value.
type Pair struct {
	Key   Value
	Value Value
}

// NullValue returns the null value for a type: every column read returns
// this when the validity bit is unset.
func NullValue(t Type) Value {
	return Value{Tag: t.Tag, Null: true}
}

// BoolValue, IntValue, ... are convenience constructors used throughout the
// shredder and filter evaluator.
func BoolValue(b bool) Value     { return Value{Tag: Boolean, Bool: b} }
func IntValue(tag Tag, v int64) Value  { return Value{Tag: tag, Int: v} }
func UintValue(tag Tag, v uint64) Value { return Value{Tag: tag, Uint: v} }
func FloatValue(tag Tag, v float64) Value { return Value{Tag: tag, Float64: v} }
func StringValue(s string) Value { return Value{Tag: StringLiteral, Str: s} }
