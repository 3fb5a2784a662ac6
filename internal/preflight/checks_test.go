package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"chelsa/internal/preflight"
)

func TestCheckBinary(t *testing.T) {
	if result := preflight.CheckBinary("shell", "sh", false); !result.Passed {
		t.Fatalf("expected sh on PATH: %+v", result)
	}
	if result := preflight.CheckBinary("ghost", "definitely-not-a-binary-424242", false); result.Passed {
		t.Fatalf("expected missing binary to fail: %+v", result)
	}
	if result := preflight.CheckBinary("empty", "  ", false); result.Passed {
		t.Fatalf("expected unconfigured command to fail: %+v", result)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := preflight.CheckDirectoryAccess("work", dir); !result.Passed {
		t.Fatalf("expected temp dir to pass: %+v", result)
	}
	if result := preflight.CheckDirectoryAccess("absent", filepath.Join(dir, "missing")); result.Passed {
		t.Fatalf("expected missing dir to fail: %+v", result)
	}
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if result := preflight.CheckDirectoryAccess("file", file); result.Passed {
		t.Fatalf("expected plain file to fail: %+v", result)
	}
}

func TestCheckAOI(t *testing.T) {
	dir := t.TempDir()
	if result := preflight.CheckAOI(filepath.Join(dir, "aoi.geojson")); result.Passed {
		t.Fatalf("expected missing AOI to fail: %+v", result)
	}
	path := filepath.Join(dir, "aoi.geojson")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if result := preflight.CheckAOI(path); !result.Passed {
		t.Fatalf("expected AOI to pass: %+v", result)
	}
}

func TestAllPassed(t *testing.T) {
	results := []preflight.Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Optional: true},
	}
	if !preflight.AllPassed(results) {
		t.Fatal("optional failure should not fail the set")
	}
	results = append(results, preflight.Result{Name: "c", Passed: false})
	if preflight.AllPassed(results) {
		t.Fatal("required failure should fail the set")
	}
}
