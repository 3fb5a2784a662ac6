package lists_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chelsa/internal/lists"
	"chelsa/internal/services"
	"chelsa/internal/services/rclone"
)

func int64Ptr(v int64) *int64 { return &v }

func writeSourceListing(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "chelsatrace_filelist.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source listing: %v", err)
	}
	return path
}

func TestInferTimeID(t *testing.T) {
	id, ok := lists.InferTimeID("CHELSA_TraCE21k_bio01_-155_V1.0.tif")
	if !ok || id != -155 {
		t.Fatalf("unexpected result: %d %v", id, ok)
	}
	id, ok = lists.InferTimeID("CHELSA_TraCE21k_bio01_20_V1.0.tif")
	if !ok || id != 20 {
		t.Fatalf("unexpected result: %d %v", id, ok)
	}
	if _, ok := lists.InferTimeID("no_time_here"); ok {
		t.Fatal("expected no marker")
	}
}

func TestAgeKaBP(t *testing.T) {
	if got := lists.AgeKaBP(-200); got != 22.0 {
		t.Fatalf("AgeKaBP(-200) = %v, want 22.0", got)
	}
	if got := lists.AgeKaBP(20); got != 0.0 {
		t.Fatalf("AgeKaBP(20) = %v, want 0.0", got)
	}
}

func TestParseManifestVariable(t *testing.T) {
	kind, variable, ok := lists.ParseManifestVariable("trace_bio01.txt")
	if !ok || kind != lists.KindTrace || variable != "bio01" {
		t.Fatalf("unexpected parse: %s %s %v", kind, variable, ok)
	}
	kind, variable, ok = lists.ParseManifestVariable("present_scd.txt")
	if !ok || kind != lists.KindPresent || variable != "scd" {
		t.Fatalf("unexpected parse: %s %s %v", kind, variable, ok)
	}
	if _, _, ok := lists.ParseManifestVariable("notes.txt"); ok {
		t.Fatal("expected parse failure")
	}
}

func TestWriteListTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "sub", "trace_pr.txt")
	if err := lists.WriteList(listPath, []string{"a.tif", "b.tif"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	content, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(content) != "a.tif\nb.tif\n" {
		t.Fatalf("unexpected content: %q", content)
	}

	empty := filepath.Join(dir, "trace_empty.txt")
	if err := lists.WriteList(empty, nil); err != nil {
		t.Fatalf("WriteList empty: %v", err)
	}
	content, err = os.ReadFile(empty)
	if err != nil {
		t.Fatalf("read empty manifest: %v", err)
	}
	if len(content) != 0 {
		t.Fatalf("empty manifest should have no trailing newline: %q", content)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "trace_bio01.txt")
	if err := lists.WriteList(listPath, []string{"CHELSA_TraCE21k_bio01_-100_V1.0.tif"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	timeID := -100
	md := &lists.Metadata{
		Kind:     lists.KindTrace,
		Variable: "bio01",
		Files:    []lists.FileEntry{{Name: "CHELSA_TraCE21k_bio01_-100_V1.0.tif", Size: int64Ptr(1024), TimeID: &timeID}},
		Stats:    lists.Stats{Count: 1},
	}
	if err := lists.SaveMetadata(listPath, md); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	if md.ListSHA1 == "" {
		t.Fatal("SaveMetadata should stamp the digest")
	}

	loaded, err := lists.LoadMetadata(listPath)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if loaded.ListSHA1 != md.ListSHA1 {
		t.Fatalf("digest mismatch after round trip: %s vs %s", loaded.ListSHA1, md.ListSHA1)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].TimeID == nil || *loaded.Files[0].TimeID != -100 {
		t.Fatalf("unexpected files: %+v", loaded.Files)
	}
}

func TestLoadMetadataMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "trace_bio01.txt")
	if err := lists.WriteList(listPath, []string{"a.tif"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	_, err := lists.LoadMetadata(listPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestLoadMetadataDetectsTamperedManifest(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "trace_bio01.txt")
	if err := lists.WriteList(listPath, []string{"CHELSA_TraCE21k_bio01_-100_V1.0.tif"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	md := &lists.Metadata{Kind: lists.KindTrace, Variable: "bio01"}
	if err := lists.SaveMetadata(listPath, md); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	if err := os.WriteFile(listPath, []byte("different_file.tif\n"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	_, err := lists.LoadMetadata(listPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected Validation error, got %v", err)
	}
}

func TestBuildTraceListsOrdersByTimeMarker(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceListing(t, dir, `[
		{"Name":"CHELSA_TraCE21k_bio01_-50_V1.0.tif","Path":"bio/CHELSA_TraCE21k_bio01_-50_V1.0.tif","Size":2048,"IsDir":false},
		{"Name":"CHELSA_TraCE21k_bio01_-100_V1.0.tif","Path":"bio/CHELSA_TraCE21k_bio01_-100_V1.0.tif","Size":1024,"IsDir":false},
		{"Name":"bio","Path":"bio","IsDir":true}
	]`)
	outputDir := filepath.Join(dir, "lists")

	written, err := lists.BuildTraceLists(source, outputDir)
	if err != nil {
		t.Fatalf("BuildTraceLists: %v", err)
	}
	listPath, ok := written["bio01"]
	if !ok {
		t.Fatalf("expected bio01 manifest, got %v", written)
	}
	content, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	want := "CHELSA_TraCE21k_bio01_-100_V1.0.tif\nCHELSA_TraCE21k_bio01_-50_V1.0.tif\n"
	if string(content) != want {
		t.Fatalf("unexpected order:\n%q\nwant\n%q", content, want)
	}

	md, err := lists.LoadMetadata(listPath)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if md.Stats.TimeIDs == nil || md.Stats.TimeIDs.Min != -100 || md.Stats.TimeIDs.Max != -50 {
		t.Fatalf("unexpected time id stats: %+v", md.Stats.TimeIDs)
	}
	if md.Stats.KaBP == nil || md.Stats.KaBP.Min != 7.0 || md.Stats.KaBP.Max != 12.0 {
		t.Fatalf("unexpected ka stats: %+v", md.Stats.KaBP)
	}
	if md.Files[0].Size == nil || *md.Files[0].Size != 1024 {
		t.Fatalf("unexpected first entry size: %+v", md.Files[0])
	}
	if md.Files[0].Path != "bio/CHELSA_TraCE21k_bio01_-100_V1.0.tif" {
		t.Fatalf("expected relative path preserved: %+v", md.Files[0])
	}
}

func TestBuildTraceListsGroupingIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceListing(t, dir, `[
		{"Name":"CHELSA_TraCE21k_bio01_0_V1.0.tif","Path":"bio/CHELSA_TraCE21k_bio01_0_V1.0.tif","Size":1},
		{"Name":"CHELSA_TraCE21k_bio01_-10_V1.0.tif","Path":"bio/CHELSA_TraCE21k_bio01_-10_V1.0.tif","Size":2},
		{"Name":"CHELSA_TraCE21k_pr_-10_V1.0.tif","Path":"pr/CHELSA_TraCE21k_pr_-10_V1.0.tif","Size":3},
		{"Name":"oddly_named.tif","Path":"orog/oddly_named.tif","Size":4}
	]`)

	first, err := lists.BuildTraceLists(source, filepath.Join(dir, "run1"))
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := lists.BuildTraceLists(source, filepath.Join(dir, "run2"))
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if len(first) != len(second) || len(first) != 3 {
		t.Fatalf("unexpected group counts: %d vs %d", len(first), len(second))
	}
	// Fallback grouping by leading path segment for the unmatched filename.
	if _, ok := first["orog"]; !ok {
		t.Fatalf("expected orog fallback group, got %v", first)
	}
	for variable, path1 := range first {
		path2, ok := second[variable]
		if !ok {
			t.Fatalf("variable %s missing from second run", variable)
		}
		content1, err := os.ReadFile(path1)
		if err != nil {
			t.Fatalf("read first: %v", err)
		}
		content2, err := os.ReadFile(path2)
		if err != nil {
			t.Fatalf("read second: %v", err)
		}
		if string(content1) != string(content2) {
			t.Fatalf("manifest for %s differs between runs", variable)
		}
	}
}

func TestBuildPresentListsNormalizesVariables(t *testing.T) {
	dir := t.TempDir()
	records := []rclone.ListingEntry{
		{Name: "CHELSA_bio1_1981-2010_V.2.1.tif", Size: int64Ptr(100)},
		{Name: "CHELSA_bio12_1981-2010_V.2.1.tif", Size: int64Ptr(200)},
		{Name: "CHELSA_scd_1981-2010_V.2.1.tif", Size: int64Ptr(300)},
		{Name: "README.txt"},
	}
	written, err := lists.BuildPresentLists(records, dir)
	if err != nil {
		t.Fatalf("BuildPresentLists: %v", err)
	}
	for _, variable := range []string{"bio01", "bio12", "scd"} {
		path, ok := written[variable]
		if !ok {
			t.Fatalf("expected %s manifest, got %v", variable, written)
		}
		if filepath.Base(path) != "present_"+variable+".txt" {
			t.Fatalf("unexpected manifest name: %s", path)
		}
	}
	if _, ok := written["readme"]; ok {
		t.Fatal("non-matching record should be dropped")
	}

	md, err := lists.LoadMetadata(written["bio01"])
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if md.Stats.DateRange != "1981-2010" {
		t.Fatalf("unexpected date range: %q", md.Stats.DateRange)
	}
	if md.Stats.Count != 1 {
		t.Fatalf("unexpected count: %d", md.Stats.Count)
	}
	if md.Kind != lists.KindPresent {
		t.Fatalf("unexpected kind: %s", md.Kind)
	}
}

func TestManifestsMissingDirectory(t *testing.T) {
	paths, err := lists.Manifests(filepath.Join(t.TempDir(), "absent"), lists.KindTrace)
	if err != nil {
		t.Fatalf("Manifests: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected empty result, got %v", paths)
	}
}

func TestManifestsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"trace_pr.txt", "trace_bio01.txt", "present_scd.txt", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	paths, err := lists.Manifests(dir, lists.KindTrace)
	if err != nil {
		t.Fatalf("Manifests: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 trace manifests, got %v", paths)
	}
	if filepath.Base(paths[0]) != "trace_bio01.txt" || filepath.Base(paths[1]) != "trace_pr.txt" {
		t.Fatalf("expected sorted order, got %v", paths)
	}
}

func TestRefreshMetadataRestampsEditedManifest(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "trace_bio01.txt")
	if err := lists.WriteList(listPath, []string{"a.tif"}); err != nil {
		t.Fatalf("WriteList: %v", err)
	}
	md := &lists.Metadata{Kind: lists.KindTrace, Variable: "bio01"}
	if err := lists.SaveMetadata(listPath, md); err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}

	// Deliberate edit invalidates the sidecar digest.
	if err := os.WriteFile(listPath, []byte("a.tif\nb.tif\n"), 0o644); err != nil {
		t.Fatalf("edit manifest: %v", err)
	}
	if _, err := lists.LoadMetadata(listPath); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error before refresh, got %v", err)
	}

	updated, err := lists.RefreshMetadata(dir)
	if err != nil {
		t.Fatalf("RefreshMetadata: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected one sidecar rewritten, got %d", updated)
	}
	if _, err := lists.LoadMetadata(listPath); err != nil {
		t.Fatalf("expected valid metadata after refresh, got %v", err)
	}

	// Second refresh is a no-op.
	updated, err = lists.RefreshMetadata(dir)
	if err != nil {
		t.Fatalf("second RefreshMetadata: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected no rewrites, got %d", updated)
	}
}
