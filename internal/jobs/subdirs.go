package jobs

import "strings"

// The CHELSA remotes shard files into fixed folders that cannot be derived
// mechanically from variable names. These tables mirror the remote layout
// and are maintained by hand.

var traceDerivedIndexVariables = map[string]struct{}{
	"scd": {}, "swe": {}, "epot": {}, "fcf": {},
	"gdd0": {}, "gdd5": {}, "gdd10": {}, "gdd30": {},
	"gsl": {}, "gst": {},
	"gts0": {}, "gts5": {}, "gts10": {}, "gts30": {},
	"end0": {}, "end5": {}, "end10": {}, "end30": {},
	"lgd": {},
}

var traceSpecialSubdirs = map[string]string{
	"dem":    "orog",
	"gle":    "orog",
	"glz":    "orog",
	"pr":     "pr",
	"tasmin": "tasmin",
	"tasmax": "tasmax",
	"tz":     "tz",
}

// TraceRemoteSubdir maps a TraCE21k variable to its remote folder.
func TraceRemoteSubdir(variable string) string {
	v := strings.ToLower(variable)
	if strings.HasPrefix(v, "bio") {
		return "bio"
	}
	if _, ok := traceDerivedIndexVariables[v]; ok {
		return "bio"
	}
	if subdir, ok := traceSpecialSubdirs[v]; ok {
		return subdir
	}
	return v
}

// PresentRemoteSubdir maps a present-day variable to its remote folder.
func PresentRemoteSubdir(variable string) string {
	v := strings.ToLower(variable)
	if strings.HasPrefix(v, "bio") {
		return "bio"
	}
	if v == "scd" {
		return "scd"
	}
	return v
}
