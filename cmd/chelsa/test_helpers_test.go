package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	aoiPath := filepath.Join(base, "aoi.geojson")
	if err := os.WriteFile(aoiPath, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644); err != nil {
		t.Fatalf("write aoi: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
aoi = %q
lists_dir = %q
cache_dir = %q
log_dir = %q
trace_filelist_json = %q

[downloads]
max_workers = 1
retries = 1

[trace]
output_dir = %q

[present]
output_dir = %q
`,
		aoiPath,
		filepath.Join(base, "lists"),
		filepath.Join(base, "cache"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "trace_filelist.json"),
		filepath.Join(base, "out", "trace"),
		filepath.Join(base, "out", "present"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CHELSA_CONFIG", configPath)
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
