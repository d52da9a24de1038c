// Package extract derives RowBinary schemas from Go struct types.
package extract

import (
	"fmt"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for analysis.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a new package loader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports |
				packages.NeedDeps,
		},
	}
}

// SetDir sets the working directory for package loading.
func (l *PackageLoader) SetDir(dir string) {
	l.config.Dir = dir
}

// Load loads packages matching the given patterns.
func (l *PackageLoader) Load(patterns []string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			errs = append(errs, err)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs[0])
	}

	return pkgs, nil
}
