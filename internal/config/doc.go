// Package config loads, normalizes, and validates chelsa configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CHELSA_CONFIG environment
// override. The Config type centralizes every knob the CLI needs: dataset
// remotes and prefixes, manifest and staging directories, the AOI geometry,
// external tool binaries, worker and retry counts, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
