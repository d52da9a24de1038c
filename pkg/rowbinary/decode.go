package rowbinary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/blockberries/rowbinary/internal/wire"
)

// maxCountPrealloc bounds the capacity pre-allocated for a decoded element
// count. Larger counts grow as elements actually decode.
const maxCountPrealloc = 1 << 16

// decodeValue reads one value of type ty. The stream ending anywhere inside
// the value, including before its first byte, is ErrUnexpectedEOF.
func decodeValue(r io.Reader, ty *TypeDesc) (Value, error) {
	v, eof, err := decodeValueOrEOF(r, ty)
	if err != nil {
		return nil, err
	}
	if eof {
		return nil, ErrUnexpectedEOF
	}
	return v, nil
}

// decodeValueOrEOF reads one value of type ty, reporting a clean end of
// stream instead of an error when it falls exactly on the value's first
// byte. This is the row iterator's end-of-stream probe: it is applied to the
// first column of each row only; EOF at any later byte is an error.
func decodeValueOrEOF(r io.Reader, ty *TypeDesc) (Value, bool, error) {
	switch ty.Kind {
	case KindUInt8:
		return decodeFixed(r, 1, func(b []byte) Value { return UInt8(b[0]) })
	case KindUInt16:
		return decodeFixed(r, 2, func(b []byte) Value { return UInt16(binary.LittleEndian.Uint16(b)) })
	case KindUInt32:
		return decodeFixed(r, 4, func(b []byte) Value { return UInt32(binary.LittleEndian.Uint32(b)) })
	case KindUInt64:
		return decodeFixed(r, 8, func(b []byte) Value { return UInt64(binary.LittleEndian.Uint64(b)) })
	case KindUInt128:
		return decodeFixed(r, 16, func(b []byte) Value {
			var v UInt128
			copy(v[:], b)
			return v
		})
	case KindUInt256:
		return decodeFixed(r, 32, func(b []byte) Value {
			var v UInt256
			copy(v[:], b)
			return v
		})
	case KindInt8:
		return decodeFixed(r, 1, func(b []byte) Value { return Int8(b[0]) })
	case KindInt16:
		return decodeFixed(r, 2, func(b []byte) Value { return Int16(binary.LittleEndian.Uint16(b)) })
	case KindInt32:
		return decodeFixed(r, 4, func(b []byte) Value { return Int32(binary.LittleEndian.Uint32(b)) })
	case KindInt64:
		return decodeFixed(r, 8, func(b []byte) Value { return Int64(binary.LittleEndian.Uint64(b)) })
	case KindInt128:
		return decodeFixed(r, 16, func(b []byte) Value {
			var v Int128
			copy(v[:], b)
			return v
		})
	case KindInt256:
		return decodeFixed(r, 32, func(b []byte) Value {
			var v Int256
			copy(v[:], b)
			return v
		})
	case KindFloat32:
		return decodeFixed(r, 4, func(b []byte) Value {
			return Float32(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		})
	case KindFloat64:
		return decodeFixed(r, 8, func(b []byte) Value {
			return Float64(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		})
	case KindBFloat16:
		return decodeFixed(r, 2, func(b []byte) Value {
			return BFloat16(bfloat16ToFloat32(binary.LittleEndian.Uint16(b)))
		})
	case KindFloat16:
		return decodeFixed(r, 2, func(b []byte) Value {
			return Float16(float16ToFloat32(binary.LittleEndian.Uint16(b)))
		})
	case KindBool:
		var buf [1]byte
		eof, err := wire.ReadFixedOrEOF(r, buf[:])
		if err != nil || eof {
			return nil, eof, mapWireError(err)
		}
		switch buf[0] {
		case 0:
			return Bool(false), false, nil
		case 1:
			return Bool(true), false, nil
		default:
			return nil, false, invalidValuef("invalid Bool byte 0x%02X", buf[0])
		}
	case KindString:
		b, eof, err := wire.ReadBytesOrEOF(r)
		if err != nil || eof {
			return nil, eof, mapWireError(err)
		}
		return String(b), false, nil
	case KindFixedString:
		buf := make([]byte, ty.Length)
		eof, err := wire.ReadFixedOrEOF(r, buf)
		if err != nil || eof {
			return nil, eof, mapWireError(err)
		}
		return FixedString(buf), false, nil
	case KindDate:
		return decodeFixed(r, 2, func(b []byte) Value { return Date(binary.LittleEndian.Uint16(b)) })
	case KindDate32:
		return decodeFixed(r, 4, func(b []byte) Value { return Date32(binary.LittleEndian.Uint32(b)) })
	case KindDateTime:
		return decodeFixed(r, 4, func(b []byte) Value { return DateTime(binary.LittleEndian.Uint32(b)) })
	case KindDateTime64:
		return decodeFixed(r, 8, func(b []byte) Value { return DateTime64(binary.LittleEndian.Uint64(b)) })
	case KindUUID:
		return decodeFixed(r, 16, func(b []byte) Value {
			var u UUID
			for i := 0; i < 8; i++ {
				u[i] = b[7-i]
				u[8+i] = b[15-i]
			}
			return u
		})
	case KindIPv4:
		return decodeFixed(r, 4, func(b []byte) Value {
			var b4 [4]byte
			binary.BigEndian.PutUint32(b4[:], binary.LittleEndian.Uint32(b))
			return IPv4Of(b4)
		})
	case KindIPv6:
		return decodeFixed(r, 16, func(b []byte) Value {
			var b16 [16]byte
			copy(b16[:], b)
			return IPv6Of(b16)
		})
	case KindDecimal32:
		return decodeFixed(r, 4, func(b []byte) Value { return Decimal32(binary.LittleEndian.Uint32(b)) })
	case KindDecimal64:
		return decodeFixed(r, 8, func(b []byte) Value { return Decimal64(binary.LittleEndian.Uint64(b)) })
	case KindDecimal128:
		return decodeFixed(r, 16, func(b []byte) Value {
			var v Decimal128
			copy(v[:], b)
			return v
		})
	case KindDecimal256:
		return decodeFixed(r, 32, func(b []byte) Value {
			var v Decimal256
			copy(v[:], b)
			return v
		})
	case KindDecimal:
		width, err := decimalWidth(ty.Precision)
		if err != nil {
			return nil, false, err
		}
		switch width {
		case 4:
			return decodeFixed(r, 4, func(b []byte) Value { return Decimal32(binary.LittleEndian.Uint32(b)) })
		case 8:
			return decodeFixed(r, 8, func(b []byte) Value { return Decimal64(binary.LittleEndian.Uint64(b)) })
		case 16:
			return decodeFixed(r, 16, func(b []byte) Value {
				var v Decimal128
				copy(v[:], b)
				return v
			})
		default:
			return decodeFixed(r, 32, func(b []byte) Value {
				var v Decimal256
				copy(v[:], b)
				return v
			})
		}
	case KindEnum8:
		return decodeFixed(r, 1, func(b []byte) Value { return Enum8(b[0]) })
	case KindEnum16:
		return decodeFixed(r, 2, func(b []byte) Value { return Enum16(binary.LittleEndian.Uint16(b)) })
	case KindNullable:
		var flag [1]byte
		eof, err := wire.ReadFixedOrEOF(r, flag[:])
		if err != nil || eof {
			return nil, eof, mapWireError(err)
		}
		switch flag[0] {
		case 1:
			return Nullable{}, false, nil
		case 0:
			inner, err := decodeValue(r, ty.Elem)
			if err != nil {
				return nil, false, err
			}
			return Nullable{Value: inner}, false, nil
		default:
			return nil, false, invalidValuef("invalid nullable flag 0x%02X", flag[0])
		}
	case KindLowCardinality:
		// Transparent at row level.
		return decodeValueOrEOF(r, ty.Elem)
	case KindArray:
		n, eof, err := readCountOrEOF(r)
		if err != nil || eof {
			return nil, eof, err
		}
		values := make(Array, 0, min(n, maxCountPrealloc))
		for i := 0; i < n; i++ {
			item, err := decodeValue(r, ty.Elem)
			if err != nil {
				return nil, false, err
			}
			values = append(values, item)
		}
		return values, false, nil
	case KindMap:
		n, eof, err := readCountOrEOF(r)
		if err != nil || eof {
			return nil, eof, err
		}
		entries := make(Map, 0, min(n, maxCountPrealloc))
		for i := 0; i < n; i++ {
			key, err := decodeValue(r, ty.Key)
			if err != nil {
				return nil, false, err
			}
			value, err := decodeValue(r, ty.Value)
			if err != nil {
				return nil, false, err
			}
			entries = append(entries, MapEntry{Key: key, Value: value})
		}
		return entries, false, nil
	case KindTuple:
		if len(ty.Items) == 0 {
			return Tuple{}, false, nil
		}
		first, eof, err := decodeValueOrEOF(r, ty.Items[0].Type)
		if err != nil || eof {
			return nil, eof, err
		}
		values := make(Tuple, 0, len(ty.Items))
		values = append(values, first)
		for _, item := range ty.Items[1:] {
			v, err := decodeValue(r, item.Type)
			if err != nil {
				return nil, false, err
			}
			values = append(values, v)
		}
		return values, false, nil
	case KindDynamic:
		return decodeDynamic(r)
	default:
		return nil, false, internalf("decode: unknown kind %d", int(ty.Kind))
	}
}

// decodeDynamic reads the inline descriptor string, then the value against
// the parsed type. The empty descriptor marks DynamicNull; a descriptor that
// does not parse to a known type is ErrUnsupportedType.
func decodeDynamic(r io.Reader) (Value, bool, error) {
	desc, eof, err := wire.ReadBytesOrEOF(r)
	if err != nil || eof {
		return nil, eof, mapWireError(err)
	}
	if len(desc) == 0 {
		return DynamicNull{}, false, nil
	}
	ty, err := ParseType(string(desc))
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			return nil, false, err
		}
		return nil, false, &UnsupportedTypeError{Name: string(desc)}
	}
	inner, err := decodeValue(r, ty)
	if err != nil {
		return nil, false, err
	}
	return Dynamic{Type: ty, Value: inner}, false, nil
}

// decodeFixed reads exactly size bytes and maps them to a value.
func decodeFixed(r io.Reader, size int, mk func([]byte) Value) (Value, bool, error) {
	var scratch [32]byte
	buf := scratch[:size]
	eof, err := wire.ReadFixedOrEOF(r, buf)
	if err != nil || eof {
		return nil, eof, mapWireError(err)
	}
	return mk(buf), false, nil
}

// readCountOrEOF reads an element count, checking platform limits.
func readCountOrEOF(r io.Reader) (int, bool, error) {
	n, eof, err := wire.ReadUvarintOrEOF(r)
	if err != nil || eof {
		return 0, eof, mapWireError(err)
	}
	if n > math.MaxInt {
		return 0, false, overflowf("element count %d too large", n)
	}
	return int(n), false, nil
}

// mapWireError lifts wire-level failures into the package error taxonomy.
func mapWireError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrUnexpectedEOF
	case errors.Is(err, wire.ErrVarintOverflow),
		errors.Is(err, wire.ErrVarintTooLong),
		errors.Is(err, wire.ErrLengthOverflow):
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	default:
		return fmt.Errorf("rowbinary: read failed: %w", err)
	}
}
