//go:build governance

package core_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// =============================================================================
// COHESION TEST - Core types must be shared by multiple packages
// =============================================================================

// TestGovernance_CoreCohesion verifies that types in pkg/core are genuinely
// shared across multiple packages. Single-use types should be moved to their
// sole consumer to maintain cohesion.
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	// Find pkg/core and collect exported types
	coreDefs := make(map[types.Object]string)
	var corePkg *packages.Package

	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/core" {
			corePkg = p
			scope := p.Types.Scope()
			for _, name := range scope.Names() {
				obj := scope.Lookup(name)
				if obj.Exported() {
					coreDefs[obj] = name
				}
			}
			break
		}
	}

	if corePkg == nil {
		t.Fatal("Could not find pkg/core")
	}

	// Count usages: CoreTypeName -> set of importing packages
	usageMap := make(map[string]map[string]bool)
	for _, name := range coreDefs {
		usageMap[name] = make(map[string]bool)
	}

	base := modulePath + "/"

	for _, p := range pkgs {
		// Skip core itself and test packages
		if p.PkgPath == corePkg.PkgPath || strings.HasSuffix(p.PkgPath, "_test") {
			continue
		}
		if p.TypesInfo == nil {
			continue
		}

		for _, info := range p.TypesInfo.Uses {
			if name, exists := coreDefs[info]; exists {
				importer := strings.TrimPrefix(p.PkgPath, base)
				usageMap[name][importer] = true
			}
		}
	}

	// Report violations
	for typeName, importers := range usageMap {
		if isCohesionAllowlisted(typeName) {
			continue
		}

		if len(importers) == 0 {
			t.Logf("WARNING: Unused Core Type: %s (consider deleting)", typeName)
		} else if len(importers) == 1 {
			var user string
			for k := range importers {
				user = k
			}
			t.Errorf("COHESION VIOLATION: 'core.%s' is used ONLY by '%s'.\n"+
				"   Fix: Move type from pkg/core to %s.",
				typeName, user, user)
		}
	}
}

// isCohesionAllowlisted returns true for types allowed to have single usage.
func isCohesionAllowlisted(name string) bool {
	allowlist := map[string]bool{
		"Row":           true, // produced by Table.Rows, rarely named
		"ParseSeverity": true, // config parsing is the one text entry point
	}
	return allowlist[name]
}

// =============================================================================
// LAYERING TEST - The engine packages form a DAG rooted at core
// =============================================================================

// engineLayers lists the pkg/ packages from lowest to highest. A package
// may import only packages that appear before it.
var engineLayers = []string{
	"core", "token", "dateformat", "ruleset", "coerce", "parser", "linker", "report", "evaluator",
}

// TestGovernance_EngineLayering verifies that pkg/ packages only import
// lower layers.
func TestGovernance_EngineLayering(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/pkg/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	rank := make(map[string]int, len(engineLayers))
	for i, name := range engineLayers {
		rank[modulePath+"/pkg/"+name] = i
	}

	for _, p := range pkgs {
		own, ok := rank[p.PkgPath]
		if !ok {
			t.Errorf("LAYERING VIOLATION: '%s' is not assigned a layer", p.PkgPath)
			continue
		}
		for importPath := range p.Imports {
			dep, ok := rank[importPath]
			if !ok {
				continue
			}
			if dep >= own {
				t.Errorf("LAYERING VIOLATION: '%s' imports '%s' from the same or a higher layer",
					strings.TrimPrefix(p.PkgPath, modulePath+"/"), strings.TrimPrefix(importPath, modulePath+"/"))
			}
		}
	}
}
