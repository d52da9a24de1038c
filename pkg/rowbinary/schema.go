package rowbinary

// Field is one column descriptor: a name and a type.
type Field struct {
	Name string
	Type *TypeDesc
}

// Schema is an ordered list of columns. It is created by the caller,
// immutable thereafter, and borrowed by writers and readers for the
// duration of each row operation.
type Schema struct {
	fields []Field
}

// NewSchema creates a schema from ordered fields.
func NewSchema(fields []Field) *Schema {
	return &Schema{fields: fields}
}

// SchemaFromTypeStrings creates a schema from (name, type string) pairs,
// parsing each type descriptor.
func SchemaFromTypeStrings(pairs [][2]string) (*Schema, error) {
	fields := make([]Field, 0, len(pairs))
	for _, pair := range pairs {
		ty, err := ParseType(pair[1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: pair[0], Type: ty})
	}
	return NewSchema(fields), nil
}

// Fields returns the ordered field list. The returned slice is the schema's
// backing storage; callers must not modify it.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.fields)
}

// IsEmpty reports whether the schema has zero columns.
func (s *Schema) IsEmpty() bool {
	return len(s.fields) == 0
}

// Validate checks the structural invariants of every column type.
func (s *Schema) Validate() error {
	for _, f := range s.fields {
		if f.Type == nil {
			return invalidValuef("column %q has no type", f.Name)
		}
		if err := f.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}
