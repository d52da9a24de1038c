package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
)

// ErrLengthOverflow indicates a decoded length does not fit the platform int.
var ErrLengthOverflow = errors.New("rowbinary: length exceeds platform limits")

// maxBytesPrealloc bounds the initial allocation for a length-prefixed read.
// The declared length is still honored exactly; larger payloads grow the
// buffer as bytes actually arrive, so a hostile length cannot force a huge
// allocation up front.
const maxBytesPrealloc = 1 << 20

// WriteBytes writes b to w as a varint length followed by the raw bytes.
// An empty slice is encoded as the single byte 0x00.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteUvarint(w, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

// WriteString writes s to w as a varint length followed by the raw bytes.
func WriteString(w io.Writer, s string) error {
	if err := WriteUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadBytes reads a varint length followed by exactly that many bytes.
// A short read anywhere is io.ErrUnexpectedEOF.
func ReadBytes(r io.Reader) ([]byte, error) {
	b, eof, err := ReadBytesOrEOF(r)
	if err != nil {
		return nil, err
	}
	if eof {
		return nil, io.ErrUnexpectedEOF
	}
	return b, nil
}

// ReadBytesOrEOF reads a varint length followed by exactly that many bytes,
// reporting a clean end of stream instead of an error when no bytes at all
// are available. See ReadUvarintOrEOF for the probe semantics.
func ReadBytesOrEOF(r io.Reader) ([]byte, bool, error) {
	n, eof, err := ReadUvarintOrEOF(r)
	if err != nil {
		return nil, false, err
	}
	if eof {
		return nil, true, nil
	}
	if n == 0 {
		return []byte{}, false, nil
	}
	if n > math.MaxInt {
		return nil, false, ErrLengthOverflow
	}
	if n <= maxBytesPrealloc {
		buf := make([]byte, n)
		if err := ReadFixed(r, buf); err != nil {
			return nil, false, err
		}
		return buf, false, nil
	}
	var grown bytes.Buffer
	if _, err := io.CopyN(&grown, r, int64(n)); err != nil {
		if err == io.EOF {
			return nil, false, io.ErrUnexpectedEOF
		}
		return nil, false, err
	}
	return grown.Bytes(), false, nil
}

// ReadString reads a varint length followed by exactly that many bytes and
// returns them as a string.
func ReadString(r io.Reader) (string, error) {
	b, err := ReadBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
