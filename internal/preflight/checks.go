// Package preflight verifies that a host can actually run downloads: the
// external tool binaries resolve on PATH, the working directories are
// writable, and the AOI geometry exists. The status command renders these
// results; nothing here mutates state.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"chelsa/internal/config"
	"chelsa/internal/services/raster"
)

// Result reports one check's outcome.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// CheckBinary verifies that a command resolves on PATH.
func CheckBinary(name, command string, optional bool) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Optional: optional, Detail: "command not configured"}
	}
	if _, err := exec.LookPath(command); err != nil {
		return Result{Name: name, Optional: optional, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Optional: optional, Detail: command}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAOI verifies the AOI geometry file.
func CheckAOI(path string) Result {
	const name = "AOI geometry"
	if err := raster.CheckAOI(path); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// Run evaluates every check for the given configuration.
func Run(cfg *config.Config) []Result {
	results := []Result{
		CheckBinary("rclone", cfg.Rclone.Binary, false),
		CheckBinary("gdalwarp", cfg.GDAL.WarpBinary, false),
		CheckAOI(cfg.Paths.AOI),
		CheckDirectoryAccess("lists directory", cfg.Paths.ListsDir),
		CheckDirectoryAccess("cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("trace output directory", cfg.Trace.OutputDir),
		CheckDirectoryAccess("present output directory", cfg.Present.OutputDir),
	}
	if cfg.Rclone.Config != "" {
		name := "rclone config"
		if _, err := os.Stat(cfg.Rclone.Config); err != nil {
			results = append(results, Result{Name: name, Detail: fmt.Sprintf("%s (%v)", cfg.Rclone.Config, err)})
		} else {
			results = append(results, Result{Name: name, Passed: true, Detail: cfg.Rclone.Config})
		}
	}
	return results
}

// AllPassed reports whether every non-optional check passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return false
		}
	}
	return true
}
