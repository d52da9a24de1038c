// Command rowbinary inspects RowBinary payloads and generates Go code from
// RowBinary schemas.
//
// Usage:
//
//	rowbinary inspect [options] <payload-file>...
//	rowbinary generate [options] <schema-file>...
//	rowbinary schema [options] <go-package-pattern>
//	rowbinary version
//
// Inspect Command:
//
//	Decode payload files and print their rows as text.
//
//	Options:
//	  -format string   Wire format: RowBinary, RowBinaryWithNames,
//	                   RowBinaryWithNamesAndTypes (default "RowBinaryWithNamesAndTypes")
//	  -schema string   Schema file with one "name Type" line per column;
//	                   required unless the format carries types
//
// Generate Command:
//
//	Generate Go structs from schema files.
//
//	Options:
//	  -package string  Generated package name (default "main")
//	  -type string     Generated struct name (default derived from the file name)
//	  -out string      Output directory (default ".")
//
// Schema Command:
//
//	Derive a schema from a Go struct and print it.
//
//	Options:
//	  -type string     Struct type name (required)
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/blockberries/rowbinary/pkg/codegen"
	"github.com/blockberries/rowbinary/pkg/extract"
	"github.com/blockberries/rowbinary/pkg/rowbinary"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "inspect", "i":
		cmdInspect(os.Args[2:])
	case "generate", "gen", "g":
		cmdGenerate(os.Args[2:])
	case "schema", "extract", "s":
		cmdSchema(os.Args[2:])
	case "version":
		fmt.Printf("rowbinary %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  rowbinary inspect [options] <payload-file>...
  rowbinary generate [options] <schema-file>...
  rowbinary schema -type <name> <go-package-pattern>
  rowbinary version

Run a command with -h for its options.`)
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	formatName := fs.String("format", "RowBinaryWithNamesAndTypes", "wire format")
	schemaPath := fs.String("schema", "", "schema file (one \"name Type\" line per column)")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "inspect: no payload files")
		os.Exit(1)
	}

	format, err := rowbinary.ParseFormat(*formatName)
	if err != nil {
		fatal(err)
	}

	var schema *rowbinary.Schema
	if *schemaPath != "" {
		schema, err = loadSchemaFile(*schemaPath)
		if err != nil {
			fatal(err)
		}
	}

	// Decode files concurrently, print results in argument order.
	outputs := make([]string, fs.NArg())
	group, _ := errgroup.WithContext(context.Background())
	for i, path := range fs.Args() {
		i, path := i, path
		group.Go(func() error {
			out, err := inspectFile(path, format, schema)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		fatal(err)
	}
	for _, out := range outputs {
		fmt.Print(out)
	}
}

func inspectFile(path string, format rowbinary.Format, schema *rowbinary.Schema) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r *rowbinary.Reader
	if schema != nil {
		r = rowbinary.NewReaderWithSchema(f, format, schema)
	} else {
		r = rowbinary.NewReader(f, format)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%s)\n", path, format)
	if err := r.ReadHeader(); err != nil {
		return "", err
	}
	for _, field := range r.Schema().Fields() {
		fmt.Fprintf(&sb, "# column %s %s\n", field.Name, field.Type.TypeName())
	}
	count := 0
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		count++
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		fmt.Fprintf(&sb, "%s\n", strings.Join(cells, "\t"))
	}
	fmt.Fprintf(&sb, "# %d rows\n", count)
	return sb.String(), nil
}

// formatValue renders a decoded value for terminal output.
func formatValue(v rowbinary.Value) string {
	switch val := v.(type) {
	case rowbinary.String:
		return fmt.Sprintf("%q", string(val))
	case rowbinary.FixedString:
		return fmt.Sprintf("%q", string(val))
	case rowbinary.Nullable:
		if val.Value == nil {
			return "NULL"
		}
		return formatValue(val.Value)
	case rowbinary.Array:
		cells := make([]string, len(val))
		for i, item := range val {
			cells[i] = formatValue(item)
		}
		return "[" + strings.Join(cells, ", ") + "]"
	case rowbinary.Map:
		cells := make([]string, len(val))
		for i, entry := range val {
			cells[i] = formatValue(entry.Key) + ": " + formatValue(entry.Value)
		}
		return "{" + strings.Join(cells, ", ") + "}"
	case rowbinary.Tuple:
		cells := make([]string, len(val))
		for i, item := range val {
			cells[i] = formatValue(item)
		}
		return "(" + strings.Join(cells, ", ") + ")"
	case rowbinary.Dynamic:
		return fmt.Sprintf("%s(%s)", val.Type.TypeName(), formatValue(val.Value))
	case rowbinary.DynamicNull:
		return "NULL"
	case rowbinary.IPv4:
		return val.Addr().String()
	case rowbinary.IPv6:
		return val.Addr().String()
	case rowbinary.UUID:
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	pkgName := fs.String("package", "main", "generated package name")
	typeName := fs.String("type", "", "generated struct name")
	outDir := fs.String("out", ".", "output directory")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "generate: no schema files")
		os.Exit(1)
	}

	group, _ := errgroup.WithContext(context.Background())
	for _, path := range fs.Args() {
		path := path
		group.Go(func() error {
			schema, err := loadSchemaFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			name := *typeName
			if name == "" {
				name = codegen.ToPascalCase(base)
			}

			outPath := filepath.Join(*outDir, base+".gen.go")
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			opts := codegen.Options{Package: *pkgName, TypeName: name, GenerateComments: true}
			if err := codegen.Generate(out, schema, opts); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(os.Stderr, "generated %s\n", outPath)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		fatal(err)
	}
}

func cmdSchema(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	typeName := fs.String("type", "", "struct type name")
	fs.Parse(args)

	if *typeName == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "schema: need -type and exactly one package pattern")
		os.Exit(1)
	}

	schema, err := extract.New().Extract(fs.Arg(0), *typeName)
	if err != nil {
		fatal(err)
	}
	for _, field := range schema.Fields() {
		fmt.Printf("%s %s\n", field.Name, field.Type.TypeName())
	}
}

// loadSchemaFile reads a schema file: one "name Type" line per column,
// blank lines and '#' comments ignored.
func loadSchemaFile(path string) (*rowbinary.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pairs [][2]string
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, typeStr, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%s:%d: want \"name Type\"", path, lineno)
		}
		pairs = append(pairs, [2]string{name, strings.TrimSpace(typeStr)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rowbinary.SchemaFromTypeStrings(pairs)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "rowbinary: %v\n", err)
	os.Exit(1)
}
