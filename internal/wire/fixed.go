package wire

import (
	"encoding/binary"
	"io"
)

// Size constants for fixed-width types.
const (
	Fixed16Size = 2
	Fixed32Size = 4
	Fixed64Size = 8
)

// AppendFixed16 appends a 16-bit value in little-endian format.
func AppendFixed16(buf []byte, v uint16) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
	)
}

// AppendFixed32 appends a 32-bit value in little-endian format.
func AppendFixed32(buf []byte, v uint32) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
	)
}

// AppendFixed64 appends a 64-bit value in little-endian format.
func AppendFixed64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
		byte(v>>32),
		byte(v>>40),
		byte(v>>48),
		byte(v>>56),
	)
}

// WriteFixed16 writes a 16-bit value to w in little-endian format.
func WriteFixed16(w io.Writer, v uint16) error {
	var buf [Fixed16Size]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteFixed32 writes a 32-bit value to w in little-endian format.
func WriteFixed32(w io.Writer, v uint32) error {
	var buf [Fixed32Size]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteFixed64 writes a 64-bit value to w in little-endian format.
func WriteFixed64(w io.Writer, v uint64) error {
	var buf [Fixed64Size]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadFixed fills buf from r, treating any short read as io.ErrUnexpectedEOF.
//
// Every multi-byte read inside a row must use this: bytes that a type
// requires are never optional, so a clean EOF here is still an error.
func ReadFixed(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadFixedOrEOF fills buf from r, reporting a clean end of stream instead
// of an error when no bytes at all are available.
//
// The first byte is probed separately: zero bytes means a clean EOF
// (returns true, nil); once one byte has been consumed, a short read in the
// remainder is io.ErrUnexpectedEOF. Together with ReadUvarintOrEOF (and
// ReadBytesOrEOF, which builds on it) this is the only place where a short
// read is non-fatal; centralizing it here keeps every other read strict.
func ReadFixedOrEOF(r io.Reader, buf []byte) (bool, error) {
	if len(buf) == 0 {
		return false, nil
	}
	if _, err := io.ReadFull(r, buf[:1]); err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}
	if len(buf) > 1 {
		if err := ReadFixed(r, buf[1:]); err != nil {
			return false, err
		}
	}
	return false, nil
}
