package rowbinary

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a type node.
type Kind int

// Type kinds.
const (
	KindUInt8 Kind = iota
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt256
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt256
	KindFloat32
	KindFloat64
	KindBFloat16
	KindFloat16
	KindBool
	KindString
	KindFixedString
	KindDate
	KindDate32
	KindDateTime
	KindDateTime64
	KindUUID
	KindIPv4
	KindIPv6
	KindDecimal32
	KindDecimal64
	KindDecimal128
	KindDecimal256
	KindDecimal
	KindEnum8
	KindEnum16
	KindNullable
	KindLowCardinality
	KindArray
	KindMap
	KindTuple
	KindDynamic
)

// String returns the lead identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindUInt128:
		return "UInt128"
	case KindUInt256:
		return "UInt256"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindInt128:
		return "Int128"
	case KindInt256:
		return "Int256"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindBFloat16:
		return "BFloat16"
	case KindFloat16:
		return "Float16"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindFixedString:
		return "FixedString"
	case KindDate:
		return "Date"
	case KindDate32:
		return "Date32"
	case KindDateTime:
		return "DateTime"
	case KindDateTime64:
		return "DateTime64"
	case KindUUID:
		return "UUID"
	case KindIPv4:
		return "IPv4"
	case KindIPv6:
		return "IPv6"
	case KindDecimal32:
		return "Decimal32"
	case KindDecimal64:
		return "Decimal64"
	case KindDecimal128:
		return "Decimal128"
	case KindDecimal256:
		return "Decimal256"
	case KindDecimal:
		return "Decimal"
	case KindEnum8:
		return "Enum8"
	case KindEnum16:
		return "Enum16"
	case KindNullable:
		return "Nullable"
	case KindLowCardinality:
		return "LowCardinality"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindTuple:
		return "Tuple"
	case KindDynamic:
		return "Dynamic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// EnumVariant is one (label, code) pair of an Enum8 or Enum16 type.
type EnumVariant struct {
	// Name is the textual label. Labels are unique within one enum.
	Name string

	// Code is the signed integer transmitted on the wire. Codes are unique
	// within one enum; Enum8 codes must fit int8.
	Code int16
}

// TupleItem is one element of a Tuple type. Name is empty for unnamed
// elements.
type TupleItem struct {
	Name string
	Type *TypeDesc
}

// TypeDesc is a node of the recursive type tree. Which fields are meaningful
// depends on Kind; unused fields are zero. Trees are finite by construction
// and exclusively owned by their schema (or by a Dynamic value).
type TypeDesc struct {
	Kind Kind

	// Length is the byte length of a FixedString.
	Length int

	// Precision is the declared precision of a Decimal, or the tick
	// precision of a DateTime64. It is metadata for callers; the codec
	// never applies the scaling factor.
	Precision int

	// Scale is the declared scale of a Decimal type.
	Scale int

	// Timezone is the optional timezone label of a DateTime or DateTime64.
	// It has no wire effect.
	Timezone string

	// MaxTypes is the optional max_types hint of a Dynamic column
	// (0 when unset). It has no wire effect at row level.
	MaxTypes int

	// Elem is the inner type of Nullable, LowCardinality, and Array.
	Elem *TypeDesc

	// Key and Value are the entry types of a Map.
	Key   *TypeDesc
	Value *TypeDesc

	// Items are the ordered elements of a Tuple.
	Items []TupleItem

	// Variants are the ordered (label, code) pairs of an Enum8 or Enum16.
	Variants []EnumVariant
}

// maxFixedStringLength bounds a declared FixedString byte length.
const maxFixedStringLength = 1 << 30

// Decimal precision bounds per storage width.
const (
	maxPrecisionDecimal32  = 9
	maxPrecisionDecimal64  = 18
	maxPrecisionDecimal128 = 38
	maxPrecisionDecimal256 = 76
)

// decimalWidth returns the storage width in bytes for a declared Decimal
// precision, selecting the narrowest class that admits it.
func decimalWidth(precision int) (int, error) {
	switch {
	case precision >= 1 && precision <= maxPrecisionDecimal32:
		return 4, nil
	case precision <= maxPrecisionDecimal64:
		return 8, nil
	case precision <= maxPrecisionDecimal128:
		return 16, nil
	case precision <= maxPrecisionDecimal256:
		return 32, nil
	default:
		return 0, invalidValuef("Decimal precision %d out of range", precision)
	}
}

// TypeName renders the canonical textual form of the type. The rendering is
// the parser's inverse: for every parsable descriptor s, parsing
// TypeName(parse(s)) yields the same tree, and the rendering is stable under
// repeated parse-render cycles. Declared Decimal(p, s) forms are preserved,
// never re-sugared to a sized variant.
func (t *TypeDesc) TypeName() string {
	var sb strings.Builder
	t.render(&sb)
	return sb.String()
}

func (t *TypeDesc) render(sb *strings.Builder) {
	switch t.Kind {
	case KindFixedString:
		fmt.Fprintf(sb, "FixedString(%d)", t.Length)
	case KindDateTime:
		if t.Timezone == "" {
			sb.WriteString("DateTime")
		} else {
			fmt.Fprintf(sb, "DateTime(%s)", quoteLabel(t.Timezone))
		}
	case KindDateTime64:
		if t.Timezone == "" {
			fmt.Fprintf(sb, "DateTime64(%d)", t.Precision)
		} else {
			fmt.Fprintf(sb, "DateTime64(%d, %s)", t.Precision, quoteLabel(t.Timezone))
		}
	case KindDecimal32, KindDecimal64, KindDecimal128, KindDecimal256:
		fmt.Fprintf(sb, "%s(%d)", t.Kind, t.Scale)
	case KindDecimal:
		fmt.Fprintf(sb, "Decimal(%d, %d)", t.Precision, t.Scale)
	case KindEnum8, KindEnum16:
		sb.WriteString(t.Kind.String())
		sb.WriteByte('(')
		for i, v := range t.Variants {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s = %d", quoteLabel(v.Name), v.Code)
		}
		sb.WriteByte(')')
	case KindNullable, KindLowCardinality, KindArray:
		sb.WriteString(t.Kind.String())
		sb.WriteByte('(')
		t.Elem.render(sb)
		sb.WriteByte(')')
	case KindMap:
		sb.WriteString("Map(")
		t.Key.render(sb)
		sb.WriteString(", ")
		t.Value.render(sb)
		sb.WriteByte(')')
	case KindTuple:
		sb.WriteString("Tuple(")
		for i, item := range t.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if item.Name != "" {
				sb.WriteString(item.Name)
				sb.WriteByte(' ')
			}
			item.Type.render(sb)
		}
		sb.WriteByte(')')
	case KindDynamic:
		if t.MaxTypes > 0 {
			fmt.Fprintf(sb, "Dynamic(max_types=%d)", t.MaxTypes)
		} else {
			sb.WriteString("Dynamic")
		}
	default:
		sb.WriteString(t.Kind.String())
	}
}

// quoteLabel renders a single-quoted label with backslash escaping for
// backslashes and single quotes.
func quoteLabel(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		default:
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// Validate checks the structural invariants of the type tree. Trees produced
// by ParseType are always valid; Validate is for trees constructed directly.
func (t *TypeDesc) Validate() error {
	switch t.Kind {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128, KindUInt256,
		KindInt8, KindInt16, KindInt32, KindInt64, KindInt128, KindInt256,
		KindFloat32, KindFloat64, KindBFloat16, KindFloat16, KindBool,
		KindString, KindDate, KindDate32, KindUUID, KindIPv4, KindIPv6:
		return nil
	case KindFixedString:
		if t.Length < 0 {
			return invalidValuef("FixedString length %d is negative", t.Length)
		}
		return nil
	case KindDateTime:
		return nil
	case KindDateTime64:
		if t.Precision < 0 || t.Precision > 9 {
			return invalidValuef("DateTime64 precision %d out of range", t.Precision)
		}
		return nil
	case KindDecimal32:
		return validateDecimalScale(t.Scale, maxPrecisionDecimal32)
	case KindDecimal64:
		return validateDecimalScale(t.Scale, maxPrecisionDecimal64)
	case KindDecimal128:
		return validateDecimalScale(t.Scale, maxPrecisionDecimal128)
	case KindDecimal256:
		return validateDecimalScale(t.Scale, maxPrecisionDecimal256)
	case KindDecimal:
		if t.Precision < 1 || t.Precision > maxPrecisionDecimal256 {
			return invalidValuef("Decimal precision %d out of range", t.Precision)
		}
		if t.Scale < 0 || t.Scale > t.Precision {
			return invalidValuef("Decimal scale %d out of range for precision %d", t.Scale, t.Precision)
		}
		return nil
	case KindEnum8, KindEnum16:
		return validateEnum(t.Kind, t.Variants)
	case KindNullable:
		if t.Elem == nil {
			return invalidValuef("Nullable has no inner type")
		}
		if t.Elem.Kind == KindNullable || t.Elem.Kind == KindLowCardinality {
			return invalidValuef("Nullable cannot wrap %s", t.Elem.Kind)
		}
		return t.Elem.Validate()
	case KindLowCardinality:
		if t.Elem == nil {
			return invalidValuef("LowCardinality has no inner type")
		}
		return t.Elem.Validate()
	case KindArray:
		if t.Elem == nil {
			return invalidValuef("Array has no inner type")
		}
		return t.Elem.Validate()
	case KindMap:
		if t.Key == nil || t.Value == nil {
			return invalidValuef("Map needs key and value types")
		}
		if !isValidMapKey(t.Key) {
			return invalidValuef("Map key %s is not a hashable scalar", t.Key.TypeName())
		}
		if err := t.Key.Validate(); err != nil {
			return err
		}
		return t.Value.Validate()
	case KindTuple:
		for _, item := range t.Items {
			if item.Type == nil {
				return invalidValuef("Tuple item has no type")
			}
			if err := item.Type.Validate(); err != nil {
				return err
			}
		}
		return nil
	case KindDynamic:
		if t.MaxTypes < 0 {
			return invalidValuef("Dynamic max_types %d is negative", t.MaxTypes)
		}
		return nil
	default:
		return invalidValuef("unknown kind %d", int(t.Kind))
	}
}

func validateDecimalScale(scale, maxPrecision int) error {
	if scale < 0 || scale > maxPrecision {
		return invalidValuef("Decimal scale %d out of range", scale)
	}
	return nil
}

func validateEnum(kind Kind, variants []EnumVariant) error {
	if len(variants) == 0 {
		return invalidValuef("%s has no variants", kind)
	}
	names := make(map[string]bool, len(variants))
	codes := make(map[int16]bool, len(variants))
	for _, v := range variants {
		if kind == KindEnum8 && (v.Code < -128 || v.Code > 127) {
			return invalidValuef("Enum8 code %d out of range", v.Code)
		}
		if names[v.Name] {
			return invalidValuef("%s label %q duplicated", kind, v.Name)
		}
		if codes[v.Code] {
			return invalidValuef("%s code %d duplicated", kind, v.Code)
		}
		names[v.Name] = true
		codes[v.Code] = true
	}
	return nil
}

// isValidMapKey reports whether t may serve as a Map key. Keys must be
// hashable scalars; LowCardinality wrapping is transparent.
func isValidMapKey(t *TypeDesc) bool {
	switch t.Kind {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128, KindUInt256,
		KindInt8, KindInt16, KindInt32, KindInt64, KindInt128, KindInt256,
		KindBool, KindString, KindFixedString,
		KindDate, KindDate32, KindDateTime, KindDateTime64,
		KindUUID, KindIPv4, KindIPv6, KindEnum8, KindEnum16:
		return true
	case KindLowCardinality:
		return t.Elem != nil && isValidMapKey(t.Elem)
	default:
		return false
	}
}
