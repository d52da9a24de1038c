package extract

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"github.com/blockberries/rowbinary/pkg/rowbinary"
)

// Extractor derives a RowBinary schema from a named Go struct type.
//
// Field names become column names (snake-cased by the Go convention is NOT
// applied; the field name is used verbatim unless a `rowbinary` tag renames
// it). A tag of "-" skips the field; a "type:" tag option overrides the
// inferred column type with an explicit descriptor.
type Extractor struct {
	loader *PackageLoader
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{loader: NewPackageLoader()}
}

// SetDir sets the working directory for package loading.
func (e *Extractor) SetDir(dir string) {
	e.loader.SetDir(dir)
}

// Extract loads the packages matching pattern and derives the schema of the
// named struct type.
func (e *Extractor) Extract(pattern, typeName string) (*rowbinary.Schema, error) {
	pkgs, err := e.loader.Load([]string{pattern})
	if err != nil {
		return nil, err
	}

	for _, pkg := range pkgs {
		obj := pkg.Types.Scope().Lookup(typeName)
		if obj == nil {
			continue
		}
		st, ok := obj.Type().Underlying().(*types.Struct)
		if !ok {
			return nil, fmt.Errorf("extract: %s.%s is not a struct", pkg.PkgPath, typeName)
		}
		return StructSchema(st)
	}
	return nil, fmt.Errorf("extract: type %s not found in %s", typeName, pattern)
}

// StructSchema derives the schema of a struct type.
func StructSchema(st *types.Struct) (*rowbinary.Schema, error) {
	var fields []rowbinary.Field
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		name, typeOverride, skip := parseTag(st.Tag(i))
		if skip {
			continue
		}
		if name == "" {
			name = f.Name()
		}

		var ty *rowbinary.TypeDesc
		var err error
		if typeOverride != "" {
			ty, err = rowbinary.ParseType(typeOverride)
			if err != nil {
				return nil, fmt.Errorf("extract: field %s: %w", f.Name(), err)
			}
		} else {
			ty, err = columnType(f.Type())
			if err != nil {
				return nil, fmt.Errorf("extract: field %s: %w", f.Name(), err)
			}
		}
		fields = append(fields, rowbinary.Field{Name: name, Type: ty})
	}
	return rowbinary.NewSchema(fields), nil
}

// parseTag reads the `rowbinary` struct tag: a column name, "-" to skip,
// and an optional "type:<descriptor>" option.
func parseTag(tag string) (name, typeOverride string, skip bool) {
	value := reflect.StructTag(tag).Get("rowbinary")
	if value == "" {
		return "", "", false
	}
	parts := strings.Split(value, ",")
	if parts[0] == "-" {
		return "", "", true
	}
	name = parts[0]
	for i, opt := range parts[1:] {
		if rest, ok := strings.CutPrefix(opt, "type:"); ok {
			// A descriptor may hold commas of its own ("Decimal(18, 4)"), so
			// the type option runs to the end of the tag.
			typeOverride = strings.Join(append([]string{rest}, parts[i+2:]...), ",")
			break
		}
	}
	return name, typeOverride, false
}

// columnType maps a Go type to a column type.
func columnType(t types.Type) (*rowbinary.TypeDesc, error) {
	switch u := t.(type) {
	case *types.Basic:
		return basicColumnType(u)
	case *types.Pointer:
		inner, err := columnType(u.Elem())
		if err != nil {
			return nil, err
		}
		if inner.Kind == rowbinary.KindNullable || inner.Kind == rowbinary.KindLowCardinality {
			return nil, fmt.Errorf("cannot wrap %s in Nullable", inner.TypeName())
		}
		return &rowbinary.TypeDesc{Kind: rowbinary.KindNullable, Elem: inner}, nil
	case *types.Slice:
		if elem, ok := u.Elem().(*types.Basic); ok && elem.Kind() == types.Byte {
			return &rowbinary.TypeDesc{Kind: rowbinary.KindString}, nil
		}
		inner, err := columnType(u.Elem())
		if err != nil {
			return nil, err
		}
		return &rowbinary.TypeDesc{Kind: rowbinary.KindArray, Elem: inner}, nil
	case *types.Map:
		key, err := columnType(u.Key())
		if err != nil {
			return nil, err
		}
		value, err := columnType(u.Elem())
		if err != nil {
			return nil, err
		}
		ty := &rowbinary.TypeDesc{Kind: rowbinary.KindMap, Key: key, Value: value}
		if err := ty.Validate(); err != nil {
			return nil, err
		}
		return ty, nil
	case *types.Named:
		if name := u.Obj(); name != nil && name.Pkg() != nil {
			switch name.Pkg().Path() + "." + name.Name() {
			case "time.Time":
				return &rowbinary.TypeDesc{Kind: rowbinary.KindDateTime}, nil
			case "net/netip.Addr":
				return &rowbinary.TypeDesc{Kind: rowbinary.KindIPv6}, nil
			}
		}
		return columnType(u.Underlying())
	default:
		return nil, fmt.Errorf("no column type for Go type %s", t.String())
	}
}

func basicColumnType(b *types.Basic) (*rowbinary.TypeDesc, error) {
	switch b.Kind() {
	case types.Bool:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindBool}, nil
	case types.Uint8:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindUInt8}, nil
	case types.Uint16:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindUInt16}, nil
	case types.Uint32:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindUInt32}, nil
	case types.Uint64, types.Uint, types.Uintptr:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindUInt64}, nil
	case types.Int8:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindInt8}, nil
	case types.Int16:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindInt16}, nil
	case types.Int32:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindInt32}, nil
	case types.Int64, types.Int:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindInt64}, nil
	case types.Float32:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindFloat32}, nil
	case types.Float64:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindFloat64}, nil
	case types.String:
		return &rowbinary.TypeDesc{Kind: rowbinary.KindString}, nil
	default:
		return nil, fmt.Errorf("no column type for Go type %s", b.Name())
	}
}
