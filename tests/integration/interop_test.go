// Package integration exercises the public API across the three RowBinary
// format variants end to end.
package integration

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/blockberries/rowbinary/pkg/rowbinary"
)

var formats = []rowbinary.Format{
	rowbinary.FormatRowBinary,
	rowbinary.FormatRowBinaryWithNames,
	rowbinary.FormatRowBinaryWithNamesAndTypes,
}

func testSchema(t *testing.T) *rowbinary.Schema {
	t.Helper()
	s, err := rowbinary.SchemaFromTypeStrings([][2]string{
		{"id", "UInt64"},
		{"label", "LowCardinality(String)"},
		{"price", "Nullable(Decimal(9, 2))"},
		{"when", "DateTime64(3, 'UTC')"},
		{"tags", "Array(Enum8('prod' = 1, 'dev' = 2))"},
		{"meta", "Map(String, Nullable(String))"},
		{"pos", "Tuple(x Float64, y Float64)"},
		{"extra", "Dynamic"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testRows() []rowbinary.Row {
	return []rowbinary.Row{
		{
			rowbinary.UInt64(1),
			rowbinary.String("widget"),
			rowbinary.NullableOf(rowbinary.Decimal32(1999)),
			rowbinary.DateTime64(1700000000123),
			rowbinary.Array{rowbinary.Enum8(1), rowbinary.Enum8(2)},
			rowbinary.Map{
				{Key: rowbinary.String("color"), Value: rowbinary.NullableOf(rowbinary.String("red"))},
				{Key: rowbinary.String("size"), Value: rowbinary.Null()},
			},
			rowbinary.Tuple{rowbinary.Float64(1.5), rowbinary.Float64(-2.5)},
			rowbinary.Dynamic{
				Type:  &rowbinary.TypeDesc{Kind: rowbinary.KindUInt8},
				Value: rowbinary.UInt8(42),
			},
		},
		{
			rowbinary.UInt64(2),
			rowbinary.String("gadget"),
			rowbinary.Null(),
			rowbinary.DateTime64(1700000000456),
			rowbinary.Array{},
			rowbinary.Map{},
			rowbinary.Tuple{rowbinary.Float64(0), rowbinary.Float64(0)},
			rowbinary.DynamicNull{},
		},
	}
}

func encode(t *testing.T, format rowbinary.Format, schema *rowbinary.Schema, rows []rowbinary.Row) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := rowbinary.NewWriter(&buf, format, schema)
	if err := w.WriteRows(rows); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRoundTripAcrossFormats(t *testing.T) {
	schema := testSchema(t)
	rows := testRows()

	for _, format := range formats {
		data := encode(t, format, schema, rows)

		r := rowbinary.NewReaderWithSchema(bytes.NewReader(data), format, schema)
		got, err := r.ReadAllRows()
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !reflect.DeepEqual(got, rows) {
			t.Errorf("%s: rows do not round trip", format)
		}
	}
}

func TestHeaderPrefixEquivalence(t *testing.T) {
	schema := testSchema(t)
	rows := testRows()

	bare := encode(t, rowbinary.FormatRowBinary, schema, rows)
	for _, format := range formats[1:] {
		full := encode(t, format, schema, rows)
		if !bytes.HasSuffix(full, bare) {
			t.Fatalf("%s: payload does not end with the bare encoding", format)
		}

		var header bytes.Buffer
		w := rowbinary.NewWriter(&header, format, schema)
		if err := w.WriteHeader(); err != nil {
			t.Fatal(err)
		}
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if len(full) != header.Len()+len(bare) {
			t.Errorf("%s: header %d + rows %d != total %d", format, header.Len(), len(bare), len(full))
		}
	}
}

func TestTypedStreamSelfDescribes(t *testing.T) {
	schema := testSchema(t)
	rows := testRows()
	data := encode(t, rowbinary.FormatRowBinaryWithNamesAndTypes, schema, rows)

	// A reader with no schema at all reconstructs everything from the
	// header.
	r := rowbinary.NewReader(bytes.NewReader(data), rowbinary.FormatRowBinaryWithNamesAndTypes)
	got, err := r.ReadAllRows()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Error("self-described stream does not round trip")
	}

	for i, f := range r.Schema().Fields() {
		want := schema.Fields()[i]
		if f.Name != want.Name || f.Type.TypeName() != want.Type.TypeName() {
			t.Errorf("column %d = (%s, %s), want (%s, %s)",
				i, f.Name, f.Type.TypeName(), want.Name, want.Type.TypeName())
		}
	}
}

func TestTruncatedStreams(t *testing.T) {
	schema := testSchema(t)
	rows := testRows()

	for _, format := range formats {
		data := encode(t, format, schema, rows)

		// Cutting the stream anywhere except a row boundary must produce
		// an error, never a silent short result.
		full := len(data)
		boundaries := map[int]bool{full: true}
		bare := encode(t, rowbinary.FormatRowBinary, schema, rows)
		row1 := encode(t, rowbinary.FormatRowBinary, schema, rows[:1])
		boundaries[full-len(bare)] = true
		boundaries[full-len(bare)+len(row1)] = true

		for cut := 0; cut < full; cut++ {
			r := rowbinary.NewReaderWithSchema(bytes.NewReader(data[:cut]), format, schema)
			_, err := r.ReadAllRows()
			if boundaries[cut] {
				if err != nil {
					t.Errorf("%s: cut at row boundary %d errored: %v", format, cut, err)
				}
			} else if err == nil {
				t.Errorf("%s: cut mid-stream at %d decoded cleanly", format, cut)
			}
		}
	}
}

func TestReadHeaderExplicitThenRows(t *testing.T) {
	schema := testSchema(t)
	rows := testRows()
	data := encode(t, rowbinary.FormatRowBinaryWithNames, schema, rows)

	r := rowbinary.NewReaderWithSchema(bytes.NewReader(data), rowbinary.FormatRowBinaryWithNames, schema)
	if err := r.ReadHeader(); err != nil {
		t.Fatal(err)
	}
	if err := r.ReadHeader(); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadAllRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Errorf("rows = %d, want %d", len(got), len(rows))
	}
}

func TestWriterReaderDisagreeOnFormat(t *testing.T) {
	schema, err := rowbinary.SchemaFromTypeStrings([][2]string{{"v", "String"}})
	if err != nil {
		t.Fatal(err)
	}
	data := encode(t, rowbinary.FormatRowBinary, schema, []rowbinary.Row{{rowbinary.String("x")}})

	// Reading a bare payload as a typed one misparses the header; it must
	// fail loudly one way or another, not fabricate rows.
	r := rowbinary.NewReader(bytes.NewReader(data), rowbinary.FormatRowBinaryWithNamesAndTypes)
	_, readErr := r.ReadAllRows()
	if readErr == nil {
		t.Error("bare payload decoded as typed stream")
	}
	if errors.Is(readErr, io.EOF) {
		t.Error("misparsed header surfaced as clean EOF")
	}
}
