package rowbinary

import (
	"bufio"
	"fmt"
	"io"

	"github.com/blockberries/rowbinary/internal/wire"
)

// Reader streams RowBinary rows from an io.Reader. It is forward-only and
// single-pass: rows arrive lazily via ReadRow, end of stream is detected
// exactly once at the first byte of a row, and after any error the reader
// is unusable (partial row state is not recoverable).
type Reader struct {
	r          *bufio.Reader
	format     Format
	schema     *Schema
	headerRead bool
	err        error
}

// NewReader creates a reader without a caller-supplied schema. Only the
// typed format can adopt its schema from the header; the other variants
// require NewReaderWithSchema.
func NewReader(r io.Reader, format Format) *Reader {
	return &Reader{
		r:      bufio.NewReader(r),
		format: format,
	}
}

// NewReaderWithSchema creates a reader with an expected schema. The schema
// must not be modified while the reader is in use.
func NewReaderWithSchema(r io.Reader, format Format, schema *Schema) *Reader {
	return &Reader{
		r:      bufio.NewReader(r),
		format: format,
		schema: schema,
	}
}

// Format returns the reader's wire format.
func (r *Reader) Format() Format {
	return r.format
}

// Schema returns the effective schema: the caller's when supplied, the
// header's after a typed header has been read, nil before either.
func (r *Reader) Schema() *Schema {
	return r.schema
}

// ReadHeader consumes the header when the format carries one and reconciles
// it with the caller-supplied schema. It is idempotent, and the first
// ReadRow triggers it implicitly.
//
// Reconciliation: a typed header is adopted when no schema was supplied;
// otherwise the caller's types are authoritative and the header's arity and
// names must agree. A names-only header requires a caller schema, since the
// wire carries no types to decode with.
func (r *Reader) ReadHeader() error {
	if r.err != nil {
		return r.err
	}
	if err := r.readHeader(); err != nil {
		r.err = err
		return err
	}
	return nil
}

func (r *Reader) readHeader() error {
	if r.headerRead {
		return nil
	}
	if !r.format.HasNames() {
		r.headerRead = true
		return nil
	}

	count, eof, err := wire.ReadUvarintOrEOF(r.r)
	if err != nil {
		return mapWireError(err)
	}
	if eof {
		return fmt.Errorf("%w: missing header", ErrUnexpectedEOF)
	}
	columns, err := countToInt(count)
	if err != nil {
		return err
	}

	names := make([]string, columns)
	for i := range names {
		name, err := wire.ReadString(r.r)
		if err != nil {
			return mapWireError(err)
		}
		names[i] = name
	}

	if r.format.HasTypes() {
		types := make([]*TypeDesc, columns)
		for i := range types {
			typeName, err := wire.ReadString(r.r)
			if err != nil {
				return mapWireError(err)
			}
			ty, err := ParseType(typeName)
			if err != nil {
				return err
			}
			types[i] = ty
		}
		if r.schema == nil {
			fields := make([]Field, columns)
			for i := range fields {
				fields[i] = Field{Name: names[i], Type: types[i]}
			}
			r.schema = NewSchema(fields)
		} else if err := r.reconcile(names); err != nil {
			return err
		}
	} else {
		if r.schema == nil {
			return invalidValuef("schema required to read RowBinaryWithNames")
		}
		if err := r.reconcile(names); err != nil {
			return err
		}
	}

	r.headerRead = true
	return nil
}

// reconcile checks the header's arity and names against the caller schema.
func (r *Reader) reconcile(names []string) error {
	if r.schema.Len() != len(names) {
		return invalidValuef("header has %d columns, schema has %d", len(names), r.schema.Len())
	}
	for i, f := range r.schema.Fields() {
		if f.Name != names[i] {
			return invalidValuef("header column %d is named %q, schema says %q", i, names[i], f.Name)
		}
	}
	return nil
}

// ReadRow returns the next row, or (nil, io.EOF) at a clean end of stream.
// A stream ending anywhere past the first byte of a row yields
// ErrUnexpectedEOF, and the reader must then be discarded.
func (r *Reader) ReadRow() (Row, error) {
	if r.err != nil {
		return nil, r.err
	}
	row, err := r.readRow()
	if err != nil {
		r.err = err
		return nil, err
	}
	return row, nil
}

func (r *Reader) readRow() (Row, error) {
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	if r.schema == nil {
		return nil, invalidValuef("schema required to read rows")
	}
	if r.schema.IsEmpty() {
		return nil, io.EOF
	}

	fields := r.schema.Fields()
	row := make(Row, 0, len(fields))
	for i, f := range fields {
		if i == 0 {
			v, eof, err := decodeValueOrEOF(r.r, f.Type)
			if err != nil {
				return nil, err
			}
			if eof {
				return nil, io.EOF
			}
			row = append(row, v)
			continue
		}
		v, err := decodeValue(r.r, f.Type)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	return row, nil
}

// ReadAllRows drains the remaining rows.
func (r *Reader) ReadAllRows() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// countToInt converts a wire count to int, checking platform limits.
func countToInt(n uint64) (int, error) {
	const maxInt = int(^uint(0) >> 1)
	if n > uint64(maxInt) {
		return 0, overflowf("count %d too large", n)
	}
	return int(n), nil
}
