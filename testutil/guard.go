// Package testutil provides helpers for tests that enforce import boundaries
// between packages.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Module is the import path prefix of this repository.
const Module = "nutritrack"

// AssertNoDirectImports scans the non-test .go files in dir (typically "." from
// within the package) and fails if any import path satisfies forbidden. Build
// tags are not evaluated.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	failIfDirectViolations(t, reason, viols)
}

// InternalImportForbidden matches any package under internal/.
func InternalImportForbidden(path string) bool {
	return strings.HasPrefix(path, Module+"/internal/")
}

// InfraImportForbidden matches the concrete slot and blob backends.
func InfraImportForbidden(path string) bool {
	return path == Module+"/internal/infra" || strings.HasPrefix(path, Module+"/internal/infra/")
}

// StoreImportForbidden matches the mutable store package.
func StoreImportForbidden(path string) bool {
	return path == Module+"/internal/core"
}

// AnyOf matches when any of preds does.
func AnyOf(preds ...func(string) bool) func(string) bool {
	return func(path string) bool {
		for _, p := range preds {
			if p(path) {
				return true
			}
		}
		return false
	}
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfDirectViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden direct imports detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}
