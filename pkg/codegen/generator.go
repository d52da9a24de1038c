// Package codegen generates Go source code from RowBinary schemas.
package codegen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blockberries/rowbinary/pkg/rowbinary"
)

// Options configures code generation.
type Options struct {
	// Package is the package name of the generated file.
	Package string

	// TypeName is the name of the generated struct.
	TypeName string

	// GenerateComments annotates each field with its column type.
	GenerateComments bool
}

// DefaultOptions returns the default code generation options.
func DefaultOptions() Options {
	return Options{
		Package:          "main",
		TypeName:         "Row",
		GenerateComments: true,
	}
}

// titleCaser is used for converting strings to title case.
var titleCaser = cases.Title(language.English)

// ToPascalCase converts a string to PascalCase.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts a string to camelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// splitName splits a name into parts based on underscores and case transitions.
func splitName(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}

		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// goType maps a column type to the Go field type. Shapes without a natural
// Go carrier fall back to rowbinary.Value so that every schema generates.
func goType(t *rowbinary.TypeDesc) (code string, imports []string) {
	switch t.Kind {
	case rowbinary.KindUInt8:
		return "uint8", nil
	case rowbinary.KindUInt16, rowbinary.KindDate:
		return "uint16", nil
	case rowbinary.KindUInt32, rowbinary.KindDateTime:
		return "uint32", nil
	case rowbinary.KindUInt64:
		return "uint64", nil
	case rowbinary.KindInt8, rowbinary.KindEnum8:
		return "int8", nil
	case rowbinary.KindInt16, rowbinary.KindEnum16:
		return "int16", nil
	case rowbinary.KindInt32, rowbinary.KindDate32, rowbinary.KindDecimal32:
		return "int32", nil
	case rowbinary.KindInt64, rowbinary.KindDateTime64, rowbinary.KindDecimal64:
		return "int64", nil
	case rowbinary.KindFloat32, rowbinary.KindBFloat16, rowbinary.KindFloat16:
		return "float32", nil
	case rowbinary.KindFloat64:
		return "float64", nil
	case rowbinary.KindBool:
		return "bool", nil
	case rowbinary.KindString:
		return "string", nil
	case rowbinary.KindFixedString:
		return "[]byte", nil
	case rowbinary.KindUUID:
		return "[16]byte", nil
	case rowbinary.KindIPv4, rowbinary.KindIPv6:
		return "netip.Addr", []string{"net/netip"}
	case rowbinary.KindLowCardinality:
		return goType(t.Elem)
	case rowbinary.KindNullable:
		inner, imports := goType(t.Elem)
		if strings.HasPrefix(inner, "rowbinary.") {
			return "rowbinary.Value", nil
		}
		return "*" + inner, imports
	case rowbinary.KindArray:
		inner, imports := goType(t.Elem)
		return "[]" + inner, imports
	default:
		// Wide integers, big decimals, maps, tuples, and Dynamic keep their
		// codec representation.
		return "rowbinary.Value", nil
	}
}
