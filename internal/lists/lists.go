package lists

import "time"

// Kind identifies which dataset family a manifest belongs to.
type Kind string

const (
	KindTrace   Kind = "trace"
	KindPresent Kind = "present"
)

// FileEntry is one remote file reference within a manifest. Size and TimeID
// are nil when the raw listing did not record them; Path is set when the
// listing carried an explicit relative path differing from the bare name.
type FileEntry struct {
	Name   string `json:"name"`
	Size   *int64 `json:"size"`
	TimeID *int   `json:"time_id"`
	Path   string `json:"path,omitempty"`
}

// TimeIDRange records the chronological extent of a trace manifest in raw
// model-step markers.
type TimeIDRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// KaRange records the same extent converted to thousands of years before
// present.
type KaRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Stats summarizes a manifest. TimeIDs and KaBP are set for trace manifests
// with at least one parsed marker; DateRange is set for present manifests.
type Stats struct {
	Count     int          `json:"count"`
	TimeIDs   *TimeIDRange `json:"time_ids,omitempty"`
	KaBP      *KaRange     `json:"ka_bp,omitempty"`
	DateRange string       `json:"date_range,omitempty"`
}

// Source records where a manifest's content came from.
type Source struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// Metadata is the sidecar record persisted next to each manifest. ListSHA1
// is empty only transiently before the first save; a persisted sidecar whose
// digest disagrees with the manifest text fails validation at load time.
type Metadata struct {
	Kind        Kind        `json:"kind"`
	Variable    string      `json:"variable"`
	Files       []FileEntry `json:"files"`
	GeneratedAt time.Time   `json:"generated_at"`
	Source      Source      `json:"source"`
	ListSHA1    string      `json:"list_sha1"`
	Stats       Stats       `json:"stats"`
}

// Count returns the number of files in the manifest.
func (m *Metadata) Count() int {
	return len(m.Files)
}
