package rowbinary

import "net/netip"

// Value is one element of a row: a tagged variant parallel to the type tree.
// There is one concrete type per storage shape. Values have no behavior
// beyond construction, equality, and a variant name for diagnostics; only
// the codec creates them from bytes.
//
// Wide integers and Decimal128/256 are carried as exact-width little-endian
// byte blocks; BFloat16 and Float16 are carried as float32.
type Value interface {
	// TypeName returns the variant name for diagnostics.
	TypeName() string
}

// Row is a single RowBinary row in schema order.
type Row []Value

// Unsigned integer values.
type (
	UInt8  uint8
	UInt16 uint16
	UInt32 uint32
	UInt64 uint64

	// UInt128 is a 128-bit unsigned integer as little-endian bytes.
	UInt128 [16]byte

	// UInt256 is a 256-bit unsigned integer as little-endian bytes.
	UInt256 [32]byte
)

// Signed integer values.
type (
	Int8  int8
	Int16 int16
	Int32 int32
	Int64 int64

	// Int128 is a 128-bit signed integer as little-endian bytes.
	Int128 [16]byte

	// Int256 is a 256-bit signed integer as little-endian bytes.
	Int256 [32]byte
)

// Floating point values. BFloat16 and Float16 surface as float32 and
// narrow to 16 bits on the wire.
type (
	Float32  float32
	Float64  float64
	BFloat16 float32
	Float16  float32
)

// Bool is a boolean value; one byte on the wire, strictly 0x00 or 0x01.
type Bool bool

// String is a variable-length byte string with no declared encoding.
type String []byte

// FixedString is an exact-length byte string; its length must match the
// declared FixedString(n) when encoding.
type FixedString []byte

// Date is days since epoch, unsigned 16-bit.
type Date uint16

// Date32 is days since epoch, signed 32-bit.
type Date32 int32

// DateTime is seconds since epoch, unsigned 32-bit.
type DateTime uint32

// DateTime64 is scaled ticks since epoch, signed 64-bit. The scaling factor
// 10^precision is metadata carried by the type, not applied by the codec.
type DateTime64 int64

// UUID is the canonical big-endian 16-byte representation. The wire form
// reverses the byte order of each 8-byte half independently; the codec
// applies that involution.
type UUID [16]byte

// IPv4 is a 4-byte address; the wire form is the little-endian 32-bit
// numeric address.
type IPv4 netip.Addr

// IPv6 is a 16-byte address in network byte order.
type IPv6 netip.Addr

// Decimal values carry the unscaled signed integer in the matching width.
type (
	Decimal32 int32
	Decimal64 int64

	// Decimal128 is the unscaled value as little-endian bytes.
	Decimal128 [16]byte

	// Decimal256 is the unscaled value as little-endian bytes.
	Decimal256 [32]byte
)

// Enum values carry the signed integer code; the label mapping is metadata
// on the type and is not transmitted per value.
type (
	Enum8  int8
	Enum16 int16
)

// Nullable wraps an optional value. A nil Value means NULL.
type Nullable struct {
	Value Value
}

// Null returns a NULL Nullable value.
func Null() Nullable {
	return Nullable{}
}

// NullableOf wraps v as a present Nullable value.
func NullableOf(v Value) Nullable {
	return Nullable{Value: v}
}

// Array is an ordered list of values of one element type.
type Array []Value

// MapEntry is one key/value pair of a Map value.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an ordered list of entries. Order is preserved as provided and
// duplicate keys are not deduplicated by the codec.
type Map []MapEntry

// Tuple is an ordered list of values matching the declared item types.
type Tuple []Value

// Dynamic is a polymorphic value carrying its own inline type descriptor.
type Dynamic struct {
	Type  *TypeDesc
	Value Value
}

// DynamicNull is the NULL of a Dynamic column. Its wire marker is the empty
// type-descriptor string (a single 0x00 length byte).
type DynamicNull struct{}

func (UInt8) TypeName() string       { return "UInt8" }
func (UInt16) TypeName() string      { return "UInt16" }
func (UInt32) TypeName() string      { return "UInt32" }
func (UInt64) TypeName() string      { return "UInt64" }
func (UInt128) TypeName() string     { return "UInt128" }
func (UInt256) TypeName() string     { return "UInt256" }
func (Int8) TypeName() string        { return "Int8" }
func (Int16) TypeName() string       { return "Int16" }
func (Int32) TypeName() string       { return "Int32" }
func (Int64) TypeName() string       { return "Int64" }
func (Int128) TypeName() string      { return "Int128" }
func (Int256) TypeName() string      { return "Int256" }
func (Float32) TypeName() string     { return "Float32" }
func (Float64) TypeName() string     { return "Float64" }
func (BFloat16) TypeName() string    { return "BFloat16" }
func (Float16) TypeName() string     { return "Float16" }
func (Bool) TypeName() string        { return "Bool" }
func (String) TypeName() string      { return "String" }
func (FixedString) TypeName() string { return "FixedString" }
func (Date) TypeName() string        { return "Date" }
func (Date32) TypeName() string      { return "Date32" }
func (DateTime) TypeName() string    { return "DateTime" }
func (DateTime64) TypeName() string  { return "DateTime64" }
func (UUID) TypeName() string        { return "UUID" }
func (IPv4) TypeName() string        { return "IPv4" }
func (IPv6) TypeName() string        { return "IPv6" }
func (Decimal32) TypeName() string   { return "Decimal32" }
func (Decimal64) TypeName() string   { return "Decimal64" }
func (Decimal128) TypeName() string  { return "Decimal128" }
func (Decimal256) TypeName() string  { return "Decimal256" }
func (Enum8) TypeName() string       { return "Enum8" }
func (Enum16) TypeName() string      { return "Enum16" }
func (Nullable) TypeName() string    { return "Nullable" }
func (Array) TypeName() string       { return "Array" }
func (Map) TypeName() string         { return "Map" }
func (Tuple) TypeName() string       { return "Tuple" }
func (Dynamic) TypeName() string     { return "Dynamic" }
func (DynamicNull) TypeName() string { return "DynamicNull" }

// Addr returns the address carried by an IPv4 value.
func (v IPv4) Addr() netip.Addr {
	return netip.Addr(v)
}

// Addr returns the address carried by an IPv6 value.
func (v IPv6) Addr() netip.Addr {
	return netip.Addr(v)
}

// IPv4Of builds an IPv4 value from a 4-byte address.
func IPv4Of(b [4]byte) IPv4 {
	return IPv4(netip.AddrFrom4(b))
}

// IPv6Of builds an IPv6 value from a 16-byte address.
func IPv6Of(b [16]byte) IPv6 {
	return IPv6(netip.AddrFrom16(b))
}
