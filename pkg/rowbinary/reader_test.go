package rowbinary

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestReaderAdoptsTypedHeader(t *testing.T) {
	schema := mustSchema(t, [2]string{"id", "UInt64"}, [2]string{"name", "String"})
	rows := []Row{{UInt64(1), String("alpha")}, {UInt64(2), String("beta")}}
	data := encodeRows(t, FormatRowBinaryWithNamesAndTypes, schema, rows)

	// No caller schema: the header schema is adopted.
	r := NewReader(bytes.NewReader(data), FormatRowBinaryWithNamesAndTypes)
	got, err := r.ReadAllRows()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("rows = %#v", got)
	}

	adopted := r.Schema()
	if adopted == nil || adopted.Len() != 2 {
		t.Fatalf("adopted schema = %+v", adopted)
	}
	fields := adopted.Fields()
	if fields[0].Name != "id" || fields[0].Type.Kind != KindUInt64 {
		t.Errorf("adopted field 0 = %+v", fields[0])
	}
	if fields[1].Name != "name" || fields[1].Type.Kind != KindString {
		t.Errorf("adopted field 1 = %+v", fields[1])
	}
}

func TestReaderCallerSchemaAuthoritative(t *testing.T) {
	schema := mustSchema(t, [2]string{"v", "UInt8"})
	data := encodeRows(t, FormatRowBinaryWithNamesAndTypes, schema, []Row{{UInt8(7)}})

	// Same arity and names: the caller's schema wins.
	caller := mustSchema(t, [2]string{"v", "UInt8"})
	r := NewReaderWithSchema(bytes.NewReader(data), FormatRowBinaryWithNamesAndTypes, caller)
	rows, err := r.ReadAllRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != Value(UInt8(7)) {
		t.Errorf("rows = %#v", rows)
	}
	if r.Schema() != caller {
		t.Error("reader replaced the caller schema")
	}
}

func TestReaderHeaderArityMismatch(t *testing.T) {
	schema := mustSchema(t, [2]string{"v", "UInt8"})
	data := encodeRows(t, FormatRowBinaryWithNamesAndTypes, schema, []Row{{UInt8(7)}})

	caller := mustSchema(t, [2]string{"a", "UInt8"}, [2]string{"b", "UInt8"})
	r := NewReaderWithSchema(bytes.NewReader(data), FormatRowBinaryWithNamesAndTypes, caller)
	_, err := r.ReadRow()
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("arity mismatch error = %v, want ErrInvalidValue", err)
	}
}

func TestReaderHeaderNamesMismatch(t *testing.T) {
	schema := mustSchema(t, [2]string{"v", "UInt8"})

	for _, format := range []Format{FormatRowBinaryWithNames, FormatRowBinaryWithNamesAndTypes} {
		data := encodeRows(t, format, schema, []Row{{UInt8(7)}})
		caller := mustSchema(t, [2]string{"other", "UInt8"})
		r := NewReaderWithSchema(bytes.NewReader(data), format, caller)
		_, err := r.ReadRow()
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s: names mismatch error = %v, want ErrInvalidValue", format, err)
		}
	}
}

func TestReaderNamesOnlyRequiresSchema(t *testing.T) {
	schema := mustSchema(t, [2]string{"v", "UInt8"})
	data := encodeRows(t, FormatRowBinaryWithNames, schema, []Row{{UInt8(7)}})

	r := NewReader(bytes.NewReader(data), FormatRowBinaryWithNames)
	_, err := r.ReadRow()
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("error = %v, want ErrInvalidValue", err)
	}

	// With a schema the same payload decodes.
	r = NewReaderWithSchema(bytes.NewReader(data), FormatRowBinaryWithNames, schema)
	rows, err := r.ReadAllRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %#v", rows)
	}
}

func TestReaderBareRequiresSchema(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x07}), FormatRowBinary)
	_, err := r.ReadRow()
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("error = %v, want ErrInvalidValue", err)
	}
}

func TestReadHeaderIdempotent(t *testing.T) {
	schema := mustSchema(t, [2]string{"v", "UInt8"})
	data := encodeRows(t, FormatRowBinaryWithNamesAndTypes, schema, []Row{{UInt8(7)}})

	r := NewReader(bytes.NewReader(data), FormatRowBinaryWithNamesAndTypes)
	for i := 0; i < 3; i++ {
		if err := r.ReadHeader(); err != nil {
			t.Fatalf("ReadHeader #%d: %v", i+1, err)
		}
	}
	row, err := r.ReadRow()
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != Value(UInt8(7)) {
		t.Errorf("row = %#v", row)
	}
}

func TestReaderMissingHeader(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), FormatRowBinaryWithNamesAndTypes)
	err := r.ReadHeader()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("missing header error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReaderZeroColumnSchema(t *testing.T) {
	schema := NewSchema(nil)
	r := NewReaderWithSchema(bytes.NewReader([]byte{0x01, 0x02}), FormatRowBinary, schema)
	_, err := r.ReadRow()
	if err != io.EOF {
		t.Errorf("zero-column read error = %v, want io.EOF", err)
	}
}

func TestFormatEquivalence(t *testing.T) {
	// The three variants differ only in the header prefix: stripping it
	// yields the bare encoding of the same rows.
	schema := mustSchema(t,
		[2]string{"id", "UInt64"},
		[2]string{"payload", "Array(Nullable(String))"},
	)
	rows := []Row{
		{UInt64(1), Array{NullableOf(String("a")), Null()}},
		{UInt64(2), Array{}},
	}

	bare := encodeRows(t, FormatRowBinary, schema, rows)

	for _, format := range []Format{FormatRowBinaryWithNames, FormatRowBinaryWithNamesAndTypes} {
		full := encodeRows(t, format, schema, rows)

		var header bytes.Buffer
		hw := NewWriter(&header, format, schema)
		if err := hw.WriteHeader(); err != nil {
			t.Fatal(err)
		}
		if err := hw.Flush(); err != nil {
			t.Fatal(err)
		}

		if !bytes.HasPrefix(full, header.Bytes()) {
			t.Fatalf("%s: encoding does not start with its header", format)
		}
		if !bytes.Equal(full[header.Len():], bare) {
			t.Errorf("%s: row payload differs from bare encoding", format)
		}
	}
}

func TestReaderSingleUseAfterError(t *testing.T) {
	schema := mustSchema(t, [2]string{"v", "Bool"})
	r := NewReaderWithSchema(bytes.NewReader([]byte{0x05, 0x00}), FormatRowBinary, schema)
	_, err := r.ReadRow()
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("error = %v", err)
	}
	// The valid byte after the bad one must not be reachable.
	_, err2 := r.ReadRow()
	if !errors.Is(err2, ErrInvalidValue) {
		t.Errorf("second read error = %v, want the sticky first error", err2)
	}
}
