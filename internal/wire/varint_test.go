package wire

import (
	"bytes"
	"io"
	"testing"
)

func TestAppendUvarint(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"max single byte", 127, []byte{0x7f}},
		{"min two bytes", 128, []byte{0x80, 0x01}},
		{"300", 300, []byte{0xac, 0x02}},
		{"max two bytes", 16383, []byte{0xff, 0x7f}},
		{"min three bytes", 16384, []byte{0x80, 0x80, 0x01}},
		{"max uint64", ^uint64(0), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendUvarint(nil, tt.value)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendUvarint(%d) = %x, want %x", tt.value, got, tt.want)
			}
			if len(got) != UvarintSize(tt.value) {
				t.Errorf("UvarintSize(%d) = %d, want %d", tt.value, UvarintSize(tt.value), len(got))
			}
		})
	}
}

func TestReadUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1 << 32, 1<<63 - 1, ^uint64(0)}

	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteUvarint(&buf, v); err != nil {
			t.Fatalf("WriteUvarint(%d): %v", v, err)
		}
		got, err := ReadUvarint(&buf)
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip = %d, want %d", got, v)
		}
		if buf.Len() != 0 {
			t.Errorf("round trip left %d unread bytes", buf.Len())
		}
	}
}

func TestReadUvarintNonMinimal(t *testing.T) {
	// Decoders accept non-minimal encodings; 0x80 0x00 is a two-byte zero.
	got, err := ReadUvarint(bytes.NewReader([]byte{0x80, 0x00}))
	if err != nil {
		t.Fatalf("ReadUvarint: %v", err)
	}
	if got != 0 {
		t.Errorf("ReadUvarint = %d, want 0", got)
	}
}

func TestReadUvarintErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.ErrUnexpectedEOF},
		{"truncated", []byte{0x80}, io.ErrUnexpectedEOF},
		{"eleven bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, ErrVarintTooLong},
		{"tenth byte continues", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x81, 0x00}, ErrVarintTooLong},
		{"overflow", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, ErrVarintOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUvarint(bytes.NewReader(tt.data))
			if err != tt.want {
				t.Errorf("ReadUvarint(%x) error = %v, want %v", tt.data, err, tt.want)
			}
		})
	}
}

func TestReadUvarintOrEOF(t *testing.T) {
	_, eof, err := ReadUvarintOrEOF(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("ReadUvarintOrEOF on empty: %v", err)
	}
	if !eof {
		t.Error("ReadUvarintOrEOF on empty: eof = false, want true")
	}

	// A continuation byte followed by EOF is a hard error, not a clean EOF.
	_, eof, err = ReadUvarintOrEOF(bytes.NewReader([]byte{0x80}))
	if eof {
		t.Error("truncated varint reported as clean EOF")
	}
	if err != io.ErrUnexpectedEOF {
		t.Errorf("truncated varint error = %v, want %v", err, io.ErrUnexpectedEOF)
	}

	v, eof, err := ReadUvarintOrEOF(bytes.NewReader([]byte{0xac, 0x02}))
	if err != nil || eof {
		t.Fatalf("ReadUvarintOrEOF = (eof=%v, err=%v)", eof, err)
	}
	if v != 300 {
		t.Errorf("ReadUvarintOrEOF = %d, want 300", v)
	}
}

func BenchmarkAppendUvarint(b *testing.B) {
	buf := make([]byte, 0, MaxVarintLen64)
	for i := 0; i < b.N; i++ {
		buf = AppendUvarint(buf[:0], uint64(i)*2654435761)
	}
}

func BenchmarkReadUvarint(b *testing.B) {
	data := AppendUvarint(nil, 1<<42)
	r := bytes.NewReader(data)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Reset(data)
		if _, err := ReadUvarint(r); err != nil {
			b.Fatal(err)
		}
	}
}
