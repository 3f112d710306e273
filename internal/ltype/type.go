// Package ltype is the closed logical type system shared by the computed
// schema, column vectors, and the operator pipeline: a small tag set with
// optional extension (precision/scale, struct fields, array element, union
// variants) and an alias used as the column or struct-field name.
package ltype

import (
	"strconv"
	"strings"
)

// Tag is the closed set of logical type tags. There is no way to construct a
// type outside of this set — NewX constructors are the only entry points.
type Tag int

const (
	Invalid Tag = iota

	Boolean

	TinyInt
	SmallInt
	Integer
	BigInt
	HugeInt

	UTinyInt
	USmallInt
	UInteger
	UBigInt
	UHugeInt

	Float
	Double
	Decimal

	StringLiteral
	Date
	Timestamp
	Interval
	UUID
	NA

	Struct
	Array
	Map
	List
	Enum
	Union
)

func (t Tag) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case TinyInt:
		return "TINYINT"
	case SmallInt:
		return "SMALLINT"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case HugeInt:
		return "HUGEINT"
	case UTinyInt:
		return "UTINYINT"
	case USmallInt:
		return "USMALLINT"
	case UInteger:
		return "UINTEGER"
	case UBigInt:
		return "UBIGINT"
	case UHugeInt:
		return "UHUGEINT"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Decimal:
		return "DECIMAL"
	case StringLiteral:
		return "STRING_LITERAL"
	case Date:
		return "DATE"
	case Timestamp:
		return "TIMESTAMP"
	case Interval:
		return "INTERVAL"
	case UUID:
		return "UUID"
	case NA:
		return "NA"
	case Struct:
		return "STRUCT"
	case Array:
		return "ARRAY"
	case Map:
		return "MAP"
	case List:
		return "LIST"
	case Enum:
		return "ENUM"
	case Union:
		return "UNION"
	default:
		return "INVALID"
	}
}

// StructField is one named member of a STRUCT type.
type StructField struct {
	Name string
	Type Type
}

// EnumEntry is one name→ordinal mapping of an ENUM type.
type EnumEntry struct {
	Name    string
	Ordinal int64
}

// Type is a logical type: a tag plus whatever extension that tag requires.
// Two Types are compared with Equal, never with ==, since slice fields make
// struct equality meaningless.
type Type struct {
	Tag   Tag
	Alias string

	// DECIMAL(p, s)
	Precision int
	Scale     int

	// STRUCT
	Fields []StructField

	// ARRAY / LIST / MAP element types. MAP additionally uses Value.
	Elem  *Type
	Value *Type

	// ARRAY fixed size, nil for unbounded.
	Size *int

	// ENUM
	EnumValues []EnumEntry

	// UNION, first-seen order. The tag column backing a union value is
	// always UTinyInt regardless of len(Variants).
	Variants []Type
}

// WithAlias returns a copy of t carrying the given alias.
func (t Type) WithAlias(alias string) Type {
	t.Alias = alias
	return t
}

func primitive(tag Tag) Type { return Type{Tag: tag} }

// Constructors for every primitive, so call sites read as ltype.NewBigInt()
// rather than ad hoc struct literals.
func NewBoolean() Type       { return primitive(Boolean) }
func NewTinyInt() Type       { return primitive(TinyInt) }
func NewSmallInt() Type      { return primitive(SmallInt) }
func NewInteger() Type       { return primitive(Integer) }
func NewBigInt() Type        { return primitive(BigInt) }
func NewHugeInt() Type       { return primitive(HugeInt) }
func NewUTinyInt() Type      { return primitive(UTinyInt) }
func NewUSmallInt() Type     { return primitive(USmallInt) }
func NewUInteger() Type      { return primitive(UInteger) }
func NewUBigInt() Type       { return primitive(UBigInt) }
func NewUHugeInt() Type      { return primitive(UHugeInt) }
func NewFloat() Type         { return primitive(Float) }
func NewDouble() Type        { return primitive(Double) }
func NewStringLiteral() Type { return primitive(StringLiteral) }
func NewDate() Type          { return primitive(Date) }
func NewTimestamp() Type     { return primitive(Timestamp) }
func NewInterval() Type      { return primitive(Interval) }
func NewUUID() Type          { return primitive(UUID) }
func NewNA() Type            { return primitive(NA) }

// NewDecimal builds a DECIMAL(precision, scale) type.
func NewDecimal(precision, scale int) Type {
	return Type{Tag: Decimal, Precision: precision, Scale: scale}
}

// NewStruct builds a STRUCT type from its named fields, in declaration
// order.
func NewStruct(fields ...StructField) Type {
	return Type{Tag: Struct, Fields: fields}
}

// NewArray builds an ARRAY type. size == nil means unbounded.
func NewArray(elem Type, size *int) Type {
	return Type{Tag: Array, Elem: &elem, Size: size}
}

// NewList builds a LIST type (an unbounded, dynamically-growable ARRAY).
func NewList(elem Type) Type {
	return Type{Tag: List, Elem: &elem}
}

// NewMap builds a MAP type.
func NewMap(key, value Type) Type {
	return Type{Tag: Map, Elem: &key, Value: &value}
}

// NewEnum builds an ENUM type from its name→ordinal entries, in declaration
// order.
func NewEnum(values ...EnumEntry) Type {
	return Type{Tag: Enum, EnumValues: values}
}

// NewUnion builds a UNION type from its variants, in first-seen order. The
// tag column is implicitly UTinyInt; it is never one of Variants.
func NewUnion(variants ...Type) Type {
	return Type{Tag: Union, Variants: variants}
}

// String renders a type the way a schema dump or error message would.
func (t Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	if t.Alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(t.Alias)
	}
	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	switch t.Tag {
	case Decimal:
		sb.WriteString("DECIMAL(")
		sb.WriteString(strconv.Itoa(t.Precision))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(t.Scale))
		sb.WriteByte(')')
	case Struct:
		sb.WriteString("STRUCT{")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			f.Type.write(sb)
		}
		sb.WriteByte('}')
	case Array:
		sb.WriteString("ARRAY{")
		t.Elem.write(sb)
		if t.Size != nil {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(*t.Size))
		}
		sb.WriteByte('}')
	case List:
		sb.WriteString("LIST{")
		t.Elem.write(sb)
		sb.WriteByte('}')
	case Map:
		sb.WriteString("MAP{")
		t.Elem.write(sb)
		sb.WriteByte(',')
		t.Value.write(sb)
		sb.WriteByte('}')
	case Enum:
		sb.WriteString("ENUM{")
		for i, e := range t.EnumValues {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Name)
		}
		sb.WriteByte('}')
	case Union:
		sb.WriteString("UNION{tag:UTINYINT")
		for _, v := range t.Variants {
			sb.WriteString(", ")
			v.write(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(t.Tag.String())
	}
}
