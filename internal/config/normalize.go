package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTargets(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AOI, err = ExpandPath(c.Paths.AOI); err != nil {
		return fmt.Errorf("paths.aoi: %w", err)
	}
	if c.Paths.ListsDir, err = ExpandPath(c.Paths.ListsDir); err != nil {
		return fmt.Errorf("paths.lists_dir: %w", err)
	}
	if c.Paths.CacheDir, err = ExpandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TraceFilelistJSON, err = ExpandPath(c.Paths.TraceFilelistJSON); err != nil {
		return fmt.Errorf("paths.trace_filelist_json: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.LogDir, defaultHistoryDBFilename)
	}
	if c.Paths.HistoryDB, err = ExpandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeTargets() error {
	var err error
	if c.Trace.OutputDir, err = ExpandPath(c.Trace.OutputDir); err != nil {
		return fmt.Errorf("trace.output_dir: %w", err)
	}
	if c.Present.OutputDir, err = ExpandPath(c.Present.OutputDir); err != nil {
		return fmt.Errorf("present.output_dir: %w", err)
	}
	if c.Rclone.Config, err = ExpandPath(c.Rclone.Config); err != nil {
		return fmt.Errorf("rclone.config: %w", err)
	}
	c.Trace.Prefix = strings.Trim(strings.TrimSpace(c.Trace.Prefix), "/")
	c.Present.Prefix = strings.Trim(strings.TrimSpace(c.Present.Prefix), "/")
	return nil
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Rclone.Binary) == "" {
		c.Rclone.Binary = defaultRcloneBinary
	}
	if strings.TrimSpace(c.GDAL.WarpBinary) == "" {
		c.GDAL.WarpBinary = defaultWarpBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
