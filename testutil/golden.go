// Package testutil provides shared test helpers for structural comparisons
// (AST subtrees, type-table snapshots, assembly listings) that are too
// large to eyeball with a plain `==`. Grounded on the teacher's
// internal/parser/testutil.go goldenCompare helper, which diffs parser
// output against on-disk golden files with the same library.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Update controls whether GoldenCompare rewrites its golden files instead
// of comparing against them. Usage: go test -update ./...
var Update = flag.Bool("update", false, "update golden files")

// AssertEqual fails t with a cmp.Diff-rendered mismatch (-want +got) when
// got and want are not structurally equal. Used by the ssa pass tests to
// compare a whole value in one shot rather than field-by-field.
func AssertEqual(t *testing.T, label string, want, got interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", label, diff)
	}
}

// GoldenCompare compares got against testdata/<name>.golden, matching the
// teacher's goldenCompare: run with -update to (re)write the golden file
// instead of comparing.
func GoldenCompare(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if *Update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to write golden file %s: %v", path, err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nrun with -update to create it", path, err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s (-want +got):\n%s", name, diff)
	}
}
