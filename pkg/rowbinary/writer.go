package rowbinary

import (
	"bufio"
	"bytes"
	"io"

	"github.com/blockberries/rowbinary/internal/wire"
)

// Writer streams RowBinary rows into an io.Writer. It buffers writes for
// efficiency; call Flush (or Close) when done.
//
// A Writer is movable but not shareable: concurrent use from multiple
// goroutines is undefined. Independent writers on distinct sinks do not
// interfere.
type Writer struct {
	w             *bufio.Writer
	format        Format
	schema        *Schema
	headerWritten bool
	// scratch holds one encoded row so that a failed row leaves the sink
	// untouched at the row boundary.
	scratch bytes.Buffer
}

// NewWriter creates a writer for the specified format and schema.
// The schema must not be modified while the writer is in use.
func NewWriter(w io.Writer, format Format, schema *Schema) *Writer {
	return &Writer{
		w:      bufio.NewWriter(w),
		format: format,
		schema: schema,
	}
}

// Format returns the writer's wire format.
func (w *Writer) Format() Format {
	return w.format
}

// Schema returns the writer's schema.
func (w *Writer) Schema() *Schema {
	return w.schema
}

// WriteHeader writes the header when the format requires one: a varint
// column count, each name as a length-prefixed string, and, for the typed
// variant, each canonical type name. Calling it zero, one, or many times
// before the first row produces the same wire bytes; the first row write
// triggers it implicitly.
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return nil
	}
	if w.format.HasNames() {
		if err := wire.WriteUvarint(w.w, uint64(w.schema.Len())); err != nil {
			return err
		}
		for _, f := range w.schema.Fields() {
			if err := wire.WriteString(w.w, f.Name); err != nil {
				return err
			}
		}
		if w.format.HasTypes() {
			for _, f := range w.schema.Fields() {
				if err := wire.WriteString(w.w, f.Type.TypeName()); err != nil {
					return err
				}
			}
		}
	}
	w.headerWritten = true
	return nil
}

// WriteRow encodes one row in schema order. A row whose arity differs from
// the schema, or whose values mismatch their declared types, fails with no
// row bytes reaching the sink.
func (w *Writer) WriteRow(row Row) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if len(row) != w.schema.Len() {
		return invalidValuef("row has %d values, schema has %d columns", len(row), w.schema.Len())
	}
	w.scratch.Reset()
	for i, f := range w.schema.Fields() {
		if err := encodeValue(&w.scratch, f.Type, row[i]); err != nil {
			return err
		}
	}
	_, err := w.w.Write(w.scratch.Bytes())
	return err
}

// WriteRows encodes multiple rows, stopping at the first failure.
func (w *Writer) WriteRows(rows []Row) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes buffered data. The underlying io.Writer is not closed.
func (w *Writer) Close() error {
	return w.Flush()
}
