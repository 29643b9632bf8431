package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/leapstack-labs/leapcheck"

// importsOf returns the imports of every non-test Go file in dir, keyed by
// file name.
func importsOf(t *testing.T, dir string) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[path] = append(out[path], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestCoreImportsOnly verifies pkg/core only imports allowed packages.
// The Golden Rule: pkg/core imports ONLY stdlib and golang.org/x/text.
func TestCoreImportsOnly(t *testing.T) {
	for file, imports := range importsOf(t, ".") {
		for _, importPath := range imports {
			// stdlib has no dot in its first element
			if !strings.Contains(importPath, ".") {
				continue
			}
			if !strings.HasPrefix(importPath, "golang.org/x/text/") {
				t.Errorf("%s imports forbidden package: %s", file, importPath)
			}
		}
	}
}

// TestPublicPackagesDoNotImportInternal verifies no package under pkg/
// depends on internal/. The rules engine must stay usable as a library.
func TestPublicPackagesDoNotImportInternal(t *testing.T) {
	dirs, err := os.ReadDir("..")
	if err != nil {
		t.Fatalf("Failed to read pkg directory: %v", err)
	}

	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		for file, imports := range importsOf(t, filepath.Join("..", d.Name())) {
			for _, importPath := range imports {
				if strings.HasPrefix(importPath, modulePath+"/internal/") {
					t.Errorf("%s imports internal package: %s", file, importPath)
				}
			}
		}
	}
}
