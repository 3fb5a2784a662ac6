package lists

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chelsa/internal/services/rclone"
)

// BuildTraceLists reads a cached `rclone lsjson` document for the TraCE21k
// remote, groups its files by variable, and writes one chronologically
// ordered manifest plus metadata sidecar per variable. The returned map is
// variable -> manifest path.
func BuildTraceLists(sourceJSON, outputDir string) (map[string]string, error) {
	payload, err := os.ReadFile(sourceJSON)
	if err != nil {
		return nil, fmt.Errorf("read source listing: %w", err)
	}
	var records []rclone.ListingEntry
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("parse source listing: %w", err)
	}

	grouped := make(map[string][]rclone.ListingEntry)
	for _, record := range records {
		if record.IsDir {
			continue
		}
		variable := traceVariable(record)
		if variable == "" {
			continue
		}
		grouped[variable] = append(grouped[variable], record)
	}

	sourceInfo, err := os.Stat(sourceJSON)
	if err != nil {
		return nil, fmt.Errorf("stat source listing: %w", err)
	}
	source := Source{
		Type:     "json",
		Path:     sourceJSON,
		Modified: sourceInfo.ModTime().UTC().Format(time.RFC3339),
	}

	written := make(map[string]string, len(grouped))
	for variable, entries := range grouped {
		sort.SliceStable(entries, func(i, j int) bool {
			return timeIDOrZero(entries[i].Name) < timeIDOrZero(entries[j].Name)
		})
		listPath := filepath.Join(outputDir, fmt.Sprintf("trace_%s.txt", variable))
		if err := WriteList(listPath, entryNames(entries)); err != nil {
			return nil, err
		}
		md := buildTraceMetadata(variable, entries, source)
		if err := SaveMetadata(listPath, md); err != nil {
			return nil, err
		}
		written[variable] = listPath
	}
	return written, nil
}

// traceVariable classifies a listing record. The filename pattern is
// primary; heterogeneous listing shapes without the canonical name fall back
// to the leading path segment.
func traceVariable(record rclone.ListingEntry) string {
	if match := traceFilenameRE.FindStringSubmatch(record.Name); match != nil {
		return strings.ToLower(match[1])
	}
	segment, _, _ := strings.Cut(record.Path, "/")
	return segment
}

func buildTraceMetadata(variable string, entries []rclone.ListingEntry, source Source) *Metadata {
	files := make([]FileEntry, 0, len(entries))
	var minTime, maxTime *int
	for _, record := range entries {
		entry := FileEntry{Name: record.Name, Size: record.Size}
		if id, ok := InferTimeID(record.Name); ok {
			v := id
			entry.TimeID = &v
			if minTime == nil || v < *minTime {
				minTime = &v
			}
			if maxTime == nil || v > *maxTime {
				maxTime = &v
			}
		}
		if record.Path != "" && record.Path != record.Name {
			entry.Path = record.Path
		}
		files = append(files, entry)
	}

	stats := Stats{Count: len(files)}
	if minTime != nil && maxTime != nil {
		stats.TimeIDs = &TimeIDRange{Min: *minTime, Max: *maxTime}
		stats.KaBP = &KaRange{Min: AgeKaBP(*maxTime), Max: AgeKaBP(*minTime)}
	}

	return &Metadata{
		Kind:        KindTrace,
		Variable:    variable,
		Files:       files,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Stats:       stats,
	}
}

// BuildPresentLists groups a live remote listing by present-day variable and
// writes one lexicographically ordered manifest plus sidecar per variable.
// Records that do not match the present-day filename pattern are dropped.
func BuildPresentLists(records []rclone.ListingEntry, outputDir string) (map[string]string, error) {
	grouped := make(map[string][]rclone.ListingEntry)
	for _, record := range records {
		if record.IsDir {
			continue
		}
		match := presentFilenameRE.FindStringSubmatch(record.Name)
		if match == nil {
			continue
		}
		variable := normalizePresentVariable(match[1])
		grouped[variable] = append(grouped[variable], record)
	}

	written := make(map[string]string, len(grouped))
	for variable, entries := range grouped {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Name < entries[j].Name
		})
		listPath := filepath.Join(outputDir, fmt.Sprintf("present_%s.txt", variable))
		if err := WriteList(listPath, entryNames(entries)); err != nil {
			return nil, err
		}
		md := buildPresentMetadata(variable, entries)
		if err := SaveMetadata(listPath, md); err != nil {
			return nil, err
		}
		written[variable] = listPath
	}
	return written, nil
}

func buildPresentMetadata(variable string, entries []rclone.ListingEntry) *Metadata {
	files := make([]FileEntry, 0, len(entries))
	dateRange := ""
	for _, record := range entries {
		if match := presentFilenameRE.FindStringSubmatch(record.Name); match != nil {
			dateRange = match[2]
		}
		entry := FileEntry{Name: record.Name, Size: record.Size}
		if record.Path != "" && record.Path != record.Name {
			entry.Path = record.Path
		}
		files = append(files, entry)
	}

	return &Metadata{
		Kind:        KindPresent,
		Variable:    variable,
		Files:       files,
		GeneratedAt: time.Now().UTC(),
		Source:      Source{Type: "rclone"},
		Stats:       Stats{Count: len(files), DateRange: dateRange},
	}
}

func timeIDOrZero(name string) int {
	id, ok := InferTimeID(name)
	if !ok {
		return 0
	}
	return id
}

func entryNames(entries []rclone.ListingEntry) []string {
	names := make([]string, 0, len(entries))
	for _, record := range entries {
		names = append(names, record.Name)
	}
	return names
}
