package codegen

import (
	"fmt"
	"io"
	"sort"
	"text/template"

	"github.com/blockberries/rowbinary/pkg/rowbinary"
)

func (o Options) apply() Options {
	if o.Package == "" {
		o.Package = "main"
	}
	if o.TypeName == "" {
		o.TypeName = "Row"
	}
	return o
}

// Generate writes a Go source file mirroring the schema: a struct with one
// field per column plus a constructor for the schema itself.
func Generate(w io.Writer, schema *rowbinary.Schema, opts Options) error {
	opts = opts.apply()
	ctx, err := newGoContext(schema, opts)
	if err != nil {
		return err
	}

	tmpl, err := template.New("go").Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

// goContext holds the resolved template inputs.
type goContext struct {
	Package  string
	TypeName string
	Imports  []string
	Fields   []goField
}

type goField struct {
	Name    string
	GoType  string
	Column  string
	TypeStr string
	Comment bool
}

func newGoContext(schema *rowbinary.Schema, opts Options) (*goContext, error) {
	ctx := &goContext{
		Package:  opts.Package,
		TypeName: opts.TypeName,
	}

	importSet := map[string]bool{
		"github.com/blockberries/rowbinary/pkg/rowbinary": true,
	}
	seen := map[string]int{}
	for _, f := range schema.Fields() {
		if f.Type == nil {
			return nil, fmt.Errorf("codegen: column %q has no type", f.Name)
		}
		code, imports := goType(f.Type)
		for _, imp := range imports {
			importSet[imp] = true
		}

		name := ToPascalCase(f.Name)
		if name == "" {
			name = fmt.Sprintf("Column%d", len(ctx.Fields))
		}
		// Column names need not produce unique Go identifiers.
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s%d", name, n)
		}

		ctx.Fields = append(ctx.Fields, goField{
			Name:    name,
			GoType:  code,
			Column:  f.Name,
			TypeStr: f.Type.TypeName(),
			Comment: opts.GenerateComments,
		})
	}

	for imp := range importSet {
		ctx.Imports = append(ctx.Imports, imp)
	}
	sort.Strings(ctx.Imports)
	return ctx, nil
}

const goTemplate = `// Code generated by rowbinary generate. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)

// {{.TypeName}} mirrors one row of its RowBinary schema.
type {{.TypeName}} struct {
{{- range .Fields}}
	{{.Name}} {{.GoType}} ` + "`rowbinary:\"{{.Column}}\"`" + `{{if .Comment}} // {{.TypeStr}}{{end}}
{{- end}}
}

// {{.TypeName}}Schema returns the schema the struct mirrors.
func {{.TypeName}}Schema() (*rowbinary.Schema, error) {
	return rowbinary.SchemaFromTypeStrings([][2]string{
{{- range .Fields}}
		{{"{"}}{{printf "%q" .Column}}, {{printf "%q" .TypeStr}}{{"}"}},
{{- end}}
	})
}
`
