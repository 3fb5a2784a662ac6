package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ConfigEnv names the environment variable that overrides the config path.
const ConfigEnv = "CHELSA_CONFIG"

// Paths contains directory and input-file configuration shared by all
// commands.
type Paths struct {
	AOI               string `toml:"aoi"`
	ListsDir          string `toml:"lists_dir"`
	CacheDir          string `toml:"cache_dir"`
	LogDir            string `toml:"log_dir"`
	HistoryDB         string `toml:"history_db"`
	TraceFilelistJSON string `toml:"trace_filelist_json"`
}

// Downloads contains worker-pool and retry settings.
type Downloads struct {
	MaxWorkers int `toml:"max_workers"`
	Retries    int `toml:"retries"`
}

// Rclone contains configuration for the external transfer tool.
type Rclone struct {
	Binary string `toml:"binary"`
	Config string `toml:"config"`
}

// GDAL contains configuration for the external raster tool.
type GDAL struct {
	WarpBinary string `toml:"warp_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Target describes one dataset kind: where its files live remotely, where
// its manifests and outputs go locally, and the nodata fill value for its
// rasters.
type Target struct {
	Remote      string  `toml:"remote"`
	Prefix      string  `toml:"prefix"`
	ListsSubdir string  `toml:"lists_subdir"`
	OutputDir   string  `toml:"output_dir"`
	NodataValue float64 `toml:"nodata_value"`
}

// Config encapsulates all configuration values for chelsa.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Downloads Downloads `toml:"downloads"`
	Rclone    Rclone    `toml:"rclone"`
	GDAL      GDAL      `toml:"gdal"`
	Logging   Logging   `toml:"logging"`
	Trace     Target    `toml:"trace"`
	Present   Target    `toml:"present"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/chelsa/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.ListsDir,
		c.Paths.CacheDir,
		c.Paths.LogDir,
		c.Trace.OutputDir,
		c.Present.OutputDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ListsRoot resolves the manifest directory for a target under the shared
// lists root. A subdir of "." or "" keeps manifests at the root itself.
func (c *Config) ListsRoot(target Target) string {
	sub := strings.TrimSpace(target.ListsSubdir)
	if sub == "" || sub == "." {
		return c.Paths.ListsDir
	}
	return filepath.Join(c.Paths.ListsDir, sub)
}

// ExpandPath expands a leading tilde and returns an absolute path. Empty
// input stays empty.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return abs, nil
}
