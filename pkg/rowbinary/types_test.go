package rowbinary

import (
	"errors"
	"testing"
)

func TestTypeDescValidate(t *testing.T) {
	valid := []*TypeDesc{
		{Kind: KindUInt8},
		{Kind: KindFixedString, Length: 0},
		{Kind: KindDateTime64, Precision: 9},
		{Kind: KindDecimal, Precision: 76, Scale: 76},
		{Kind: KindEnum8, Variants: []EnumVariant{{Name: "a", Code: -128}}},
		{Kind: KindNullable, Elem: &TypeDesc{Kind: KindArray, Elem: &TypeDesc{Kind: KindUInt8}}},
		{Kind: KindLowCardinality, Elem: &TypeDesc{Kind: KindNullable, Elem: &TypeDesc{Kind: KindString}}},
		{Kind: KindMap, Key: &TypeDesc{Kind: KindUUID}, Value: &TypeDesc{Kind: KindDynamic}},
		{Kind: KindTuple},
	}
	for _, ty := range valid {
		if err := ty.Validate(); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", ty.TypeName(), err)
		}
	}

	invalid := []*TypeDesc{
		{Kind: KindFixedString, Length: -1},
		{Kind: KindDateTime64, Precision: 10},
		{Kind: KindDecimal, Precision: 0},
		{Kind: KindDecimal, Precision: 9, Scale: 10},
		{Kind: KindEnum8},
		{Kind: KindEnum8, Variants: []EnumVariant{{Name: "a", Code: 200}}},
		{Kind: KindEnum16, Variants: []EnumVariant{{Name: "a", Code: 1}, {Name: "a", Code: 2}}},
		{Kind: KindNullable},
		{Kind: KindNullable, Elem: &TypeDesc{Kind: KindNullable, Elem: &TypeDesc{Kind: KindUInt8}}},
		{Kind: KindNullable, Elem: &TypeDesc{Kind: KindLowCardinality, Elem: &TypeDesc{Kind: KindString}}},
		{Kind: KindArray},
		{Kind: KindMap, Key: &TypeDesc{Kind: KindFloat64}, Value: &TypeDesc{Kind: KindUInt8}},
		{Kind: KindTuple, Items: []TupleItem{{Name: "x"}}},
	}
	for _, ty := range invalid {
		if err := ty.Validate(); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidValue", ty, err)
		}
	}
}

func TestSchemaValidate(t *testing.T) {
	s, err := SchemaFromTypeStrings([][2]string{
		{"id", "UInt64"},
		{"name", "LowCardinality(String)"},
		{"score", "Nullable(Decimal(9, 2))"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}
	if s.Len() != 3 || s.IsEmpty() {
		t.Errorf("Len = %d, IsEmpty = %v", s.Len(), s.IsEmpty())
	}

	bad := NewSchema([]Field{{Name: "x"}})
	if err := bad.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Validate of nil-typed column = %v, want ErrInvalidValue", err)
	}
}

func TestSchemaFromTypeStringsError(t *testing.T) {
	_, err := SchemaFromTypeStrings([][2]string{{"v", "NotAType"}})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestKindString(t *testing.T) {
	if KindUInt8.String() != "UInt8" || KindLowCardinality.String() != "LowCardinality" {
		t.Error("Kind.String mismatch")
	}
	if Kind(999).String() != "Kind(999)" {
		t.Errorf("unknown kind = %s", Kind(999).String())
	}
}

func TestQuoteLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "'plain'"},
		{"it's", `'it\'s'`},
		{`a\b`, `'a\\b'`},
	}
	for _, tt := range tests {
		if got := quoteLabel(tt.in); got != tt.want {
			t.Errorf("quoteLabel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
