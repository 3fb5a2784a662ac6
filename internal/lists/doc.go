// Package lists builds and validates download manifests.
//
// A manifest is a plain-text file of remote filenames for one climate
// variable, written once per prepare-lists run and read by every download
// run after it. Each manifest carries a JSON metadata sidecar binding it to
// a SHA-1 digest of the manifest text plus per-file size and time-marker
// annotations; loading recomputes the digest so stale metadata is detected
// before any job is scheduled.
//
// Trace manifests are ordered chronologically by the time marker embedded in
// TraCE21k filenames; present-day manifests are ordered lexicographically
// for reproducibility only.
package lists
