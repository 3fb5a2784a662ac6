package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownloads(); err != nil {
		return err
	}
	if err := c.validateTargets(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if c.Downloads.MaxWorkers < 1 {
		return errors.New("downloads.max_workers must be at least 1")
	}
	if c.Downloads.Retries < 1 {
		return errors.New("downloads.retries must be at least 1")
	}
	return nil
}

func (c *Config) validateTargets() error {
	if c.Trace.Remote == "" {
		return errors.New("trace.remote must be set")
	}
	if c.Present.Remote == "" {
		return errors.New("present.remote must be set")
	}
	if c.Trace.OutputDir == "" {
		return errors.New("trace.output_dir must be set")
	}
	if c.Present.OutputDir == "" {
		return errors.New("present.output_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
