package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"chelsa/internal/fileutil"
)

// Transformer defines the raster processing behaviour the pipeline depends
// on: clip a raster to the AOI geometry, fill masked cells with the nodata
// value, cast to Float32, and write a tiled compressed GeoTIFF.
type Transformer interface {
	ClipFill(ctx context.Context, srcPath, destPath, aoiPath string, nodata float64) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the CLI transformer.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// CLI wraps the gdalwarp command-line tool.
type CLI struct {
	binary string
	exec   Executor
}

// New constructs a gdalwarp-backed transformer.
func New(binary string, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("gdalwarp binary required")
	}
	cli := &CLI{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// ClipFill clips srcPath to the AOI cutline (gdalwarp reprojects the cutline
// to the raster's coordinate system), fills masked cells with nodata, casts
// to Float32, and writes a DEFLATE-compressed 256x256-tiled GeoTIFF.
func (c *CLI) ClipFill(ctx context.Context, srcPath, destPath, aoiPath string, nodata float64) error {
	if srcPath == "" {
		return errors.New("source raster path required")
	}
	if destPath == "" {
		return errors.New("destination path required")
	}
	if aoiPath == "" {
		return errors.New("AOI path required")
	}
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("source raster: %w", err)
	}
	if err := fileutil.EnsureParentDir(destPath); err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	nodataArg := strconv.FormatFloat(nodata, 'f', -1, 64)
	args := []string{
		"-q", "-overwrite",
		"-cutline", aoiPath, "-crop_to_cutline",
		"-dstnodata", nodataArg,
		"-ot", "Float32",
		"-of", "GTiff",
		"-co", "COMPRESS=DEFLATE",
		"-co", "TILED=YES",
		"-co", "BLOCKXSIZE=256",
		"-co", "BLOCKYSIZE=256",
		"-co", "BIGTIFF=IF_NEEDED",
		srcPath, destPath,
	}
	if err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("gdalwarp %s: %w", srcPath, err)
	}
	return nil
}

// CheckAOI verifies the AOI geometry file exists and is a regular non-empty
// file. The executor calls this once before sharing the path across workers.
func CheckAOI(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("AOI file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("AOI file %s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("AOI file %s is empty", path)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic != "" {
			return fmt.Errorf("%w: %s", err, diagnostic)
		}
		return err
	}
	return nil
}
