package rowbinary

import (
	"encoding/binary"
	"io"
	"math"
	"net/netip"

	"github.com/blockberries/rowbinary/internal/wire"
)

// encodeValue writes v against the declared type ty. Dispatch is on the type
// tree only, never on the value: a value variant that does not match the
// declared type fails with TypeMismatchError before that value's own bytes
// reach w. A mismatch nested inside a composite is found only after the
// composite's count, flag, or earlier items were written, so callers that
// need a clean sink on failure encode into a scratch buffer first (see
// Writer.WriteRow).
func encodeValue(w io.Writer, ty *TypeDesc, v Value) error {
	switch ty.Kind {
	case KindUInt8:
		n, ok := v.(UInt8)
		if !ok {
			return mismatch(ty, v)
		}
		return writeByte(w, byte(n))
	case KindUInt16:
		n, ok := v.(UInt16)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed16(w, uint16(n))
	case KindUInt32:
		n, ok := v.(UInt32)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, uint32(n))
	case KindUInt64:
		n, ok := v.(UInt64)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed64(w, uint64(n))
	case KindUInt128:
		n, ok := v.(UInt128)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, n[:])
	case KindUInt256:
		n, ok := v.(UInt256)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, n[:])
	case KindInt8:
		n, ok := v.(Int8)
		if !ok {
			return mismatch(ty, v)
		}
		return writeByte(w, byte(n))
	case KindInt16:
		n, ok := v.(Int16)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed16(w, uint16(n))
	case KindInt32:
		n, ok := v.(Int32)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, uint32(n))
	case KindInt64:
		n, ok := v.(Int64)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed64(w, uint64(n))
	case KindInt128:
		n, ok := v.(Int128)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, n[:])
	case KindInt256:
		n, ok := v.(Int256)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, n[:])
	case KindFloat32:
		f, ok := v.(Float32)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, math.Float32bits(float32(f)))
	case KindFloat64:
		f, ok := v.(Float64)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed64(w, math.Float64bits(float64(f)))
	case KindBFloat16:
		f, ok := v.(BFloat16)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed16(w, bfloat16Bits(float32(f)))
	case KindFloat16:
		f, ok := v.(Float16)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed16(w, float16Bits(float32(f)))
	case KindBool:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(ty, v)
		}
		if b {
			return writeByte(w, 1)
		}
		return writeByte(w, 0)
	case KindString:
		s, ok := v.(String)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteBytes(w, s)
	case KindFixedString:
		s, ok := v.(FixedString)
		if !ok {
			return mismatch(ty, v)
		}
		if len(s) != ty.Length {
			return invalidValuef("FixedString length mismatch: value has %d bytes, type wants %d", len(s), ty.Length)
		}
		return writeAll(w, s)
	case KindDate:
		d, ok := v.(Date)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed16(w, uint16(d))
	case KindDate32:
		d, ok := v.(Date32)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, uint32(d))
	case KindDateTime:
		d, ok := v.(DateTime)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, uint32(d))
	case KindDateTime64:
		d, ok := v.(DateTime64)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed64(w, uint64(d))
	case KindUUID:
		u, ok := v.(UUID)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, uuidToWire(u))
	case KindIPv4:
		a, ok := v.(IPv4)
		if !ok {
			return mismatch(ty, v)
		}
		addr := netip.Addr(a).Unmap()
		if !addr.Is4() {
			return invalidValuef("IPv4 value does not hold an IPv4 address")
		}
		b4 := addr.As4()
		return wire.WriteFixed32(w, binary.BigEndian.Uint32(b4[:]))
	case KindIPv6:
		a, ok := v.(IPv6)
		if !ok {
			return mismatch(ty, v)
		}
		addr := netip.Addr(a)
		if !addr.IsValid() {
			return invalidValuef("IPv6 value holds no address")
		}
		b16 := addr.As16()
		return writeAll(w, b16[:])
	case KindDecimal32:
		d, ok := v.(Decimal32)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, uint32(d))
	case KindDecimal64:
		d, ok := v.(Decimal64)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed64(w, uint64(d))
	case KindDecimal128:
		d, ok := v.(Decimal128)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, d[:])
	case KindDecimal256:
		d, ok := v.(Decimal256)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, d[:])
	case KindDecimal:
		return encodeDecimal(w, ty, v)
	case KindEnum8:
		e, ok := v.(Enum8)
		if !ok {
			return mismatch(ty, v)
		}
		return writeByte(w, byte(e))
	case KindEnum16:
		e, ok := v.(Enum16)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed16(w, uint16(e))
	case KindNullable:
		n, ok := v.(Nullable)
		if !ok {
			return mismatch(ty, v)
		}
		if n.Value == nil {
			return writeByte(w, 1)
		}
		if err := writeByte(w, 0); err != nil {
			return err
		}
		return encodeValue(w, ty.Elem, n.Value)
	case KindLowCardinality:
		// Transparent at row level.
		return encodeValue(w, ty.Elem, v)
	case KindArray:
		a, ok := v.(Array)
		if !ok {
			return mismatch(ty, v)
		}
		if err := wire.WriteUvarint(w, uint64(len(a))); err != nil {
			return err
		}
		for _, item := range a {
			if err := encodeValue(w, ty.Elem, item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		m, ok := v.(Map)
		if !ok {
			return mismatch(ty, v)
		}
		if err := wire.WriteUvarint(w, uint64(len(m))); err != nil {
			return err
		}
		for _, entry := range m {
			if err := encodeValue(w, ty.Key, entry.Key); err != nil {
				return err
			}
			if err := encodeValue(w, ty.Value, entry.Value); err != nil {
				return err
			}
		}
		return nil
	case KindTuple:
		t, ok := v.(Tuple)
		if !ok {
			return mismatch(ty, v)
		}
		if len(t) != len(ty.Items) {
			return invalidValuef("Tuple length mismatch: value has %d items, type wants %d", len(t), len(ty.Items))
		}
		for i, item := range ty.Items {
			if err := encodeValue(w, item.Type, t[i]); err != nil {
				return err
			}
		}
		return nil
	case KindDynamic:
		return encodeDynamic(w, v)
	default:
		return internalf("encode: unknown kind %d", int(ty.Kind))
	}
}

// encodeDecimal handles the generic Decimal(p, s) form, whose storage width
// is selected by the declared precision.
func encodeDecimal(w io.Writer, ty *TypeDesc, v Value) error {
	width, err := decimalWidth(ty.Precision)
	if err != nil {
		return err
	}
	switch width {
	case 4:
		d, ok := v.(Decimal32)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed32(w, uint32(d))
	case 8:
		d, ok := v.(Decimal64)
		if !ok {
			return mismatch(ty, v)
		}
		return wire.WriteFixed64(w, uint64(d))
	case 16:
		d, ok := v.(Decimal128)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, d[:])
	default:
		d, ok := v.(Decimal256)
		if !ok {
			return mismatch(ty, v)
		}
		return writeAll(w, d[:])
	}
}

// encodeDynamic writes the inline descriptor, then the value against it.
// DynamicNull is marked by the empty descriptor string.
func encodeDynamic(w io.Writer, v Value) error {
	switch dv := v.(type) {
	case DynamicNull:
		return wire.WriteString(w, "")
	case Dynamic:
		if dv.Type == nil {
			return invalidValuef("Dynamic value has no inline type")
		}
		if dv.Value == nil {
			return invalidValuef("Dynamic value has no payload")
		}
		if err := wire.WriteString(w, dv.Type.TypeName()); err != nil {
			return err
		}
		return encodeValue(w, dv.Type, dv.Value)
	default:
		return &TypeMismatchError{Expected: "Dynamic", Actual: v.TypeName()}
	}
}

func mismatch(ty *TypeDesc, v Value) error {
	actual := "nil"
	if v != nil {
		actual = v.TypeName()
	}
	return &TypeMismatchError{Expected: ty.TypeName(), Actual: actual}
}

// uuidToWire applies the half-swap involution: the first 8 and last 8 bytes
// of the canonical big-endian form are reversed independently. The same
// transform decodes.
func uuidToWire(u UUID) []byte {
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i] = u[7-i]
		out[8+i] = u[15-i]
	}
	return out
}

func writeByte(w io.Writer, b byte) error {
	var buf [1]byte
	buf[0] = b
	_, err := w.Write(buf[:])
	return err
}

func writeAll(w io.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}
