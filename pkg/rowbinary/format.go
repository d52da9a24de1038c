package rowbinary

import "fmt"

// Format selects one of the RowBinary wire format variants. The three
// variants share the row payload and differ only in the header prefix.
type Format int

const (
	// FormatRowBinary carries rows only; decoding requires a caller schema.
	FormatRowBinary Format = iota

	// FormatRowBinaryWithNames prefixes the rows with a varint column count
	// and the length-prefixed column names.
	FormatRowBinaryWithNames

	// FormatRowBinaryWithNamesAndTypes additionally carries the canonical
	// textual type name of every column.
	FormatRowBinaryWithNamesAndTypes
)

// String returns the ClickHouse format name.
func (f Format) String() string {
	switch f {
	case FormatRowBinary:
		return "RowBinary"
	case FormatRowBinaryWithNames:
		return "RowBinaryWithNames"
	case FormatRowBinaryWithNamesAndTypes:
		return "RowBinaryWithNamesAndTypes"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// HasNames reports whether the format's header carries column names.
func (f Format) HasNames() bool {
	return f == FormatRowBinaryWithNames || f == FormatRowBinaryWithNamesAndTypes
}

// HasTypes reports whether the format's header carries column types.
func (f Format) HasTypes() bool {
	return f == FormatRowBinaryWithNamesAndTypes
}

// ParseFormat resolves a ClickHouse format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "RowBinary":
		return FormatRowBinary, nil
	case "RowBinaryWithNames":
		return FormatRowBinaryWithNames, nil
	case "RowBinaryWithNamesAndTypes":
		return FormatRowBinaryWithNamesAndTypes, nil
	default:
		return 0, invalidValuef("unknown format %q", s)
	}
}
