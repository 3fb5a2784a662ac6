package lists

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	traceFilenameRE   = regexp.MustCompile(`(?i)CHELSA[_-]TraCE21k_([a-z0-9]+)_(-?\d+)_`)
	presentFilenameRE = regexp.MustCompile(`(?i)CHELSA_(bio\d{1,2}|scd)_(\d{4}-\d{4})_`)
	timeIDRE          = regexp.MustCompile(`_(-?\d+)_`)
	manifestNameRE    = regexp.MustCompile(`^(trace|present)_(.+)\.txt$`)
)

// InferTimeID extracts the signed time marker embedded in a TraCE21k
// filename (`_<int>_`). The second result is false when the filename carries
// no marker.
func InferTimeID(name string) (int, bool) {
	match := timeIDRE.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// AgeKaBP converts a TraCE21k time marker to kilo-annum before present.
func AgeKaBP(timeID int) float64 {
	return float64(20-timeID) / 10.0
}

// ParseManifestVariable extracts the kind and variable token from a manifest
// filename of the form `<kind>_<variable>.txt`.
func ParseManifestVariable(filename string) (Kind, string, bool) {
	match := manifestNameRE.FindStringSubmatch(filename)
	if match == nil {
		return "", "", false
	}
	return Kind(match[1]), match[2], true
}

// normalizePresentVariable folds a raw present-day variable token into its
// canonical form: numbered bio variables become two-digit zero-padded
// ("bio1" -> "bio01"), literal tokens pass through lowercased.
func normalizePresentVariable(raw string) string {
	v := strings.ToLower(raw)
	if strings.HasPrefix(v, "bio") {
		if n, err := strconv.Atoi(v[3:]); err == nil {
			return fmt.Sprintf("bio%02d", n)
		}
	}
	return v
}
