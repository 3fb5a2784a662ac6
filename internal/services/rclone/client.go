package rclone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"chelsa/internal/fileutil"
)

// ListingEntry is one record of an `rclone lsjson` listing. Size is a
// pointer because some backends omit it.
type ListingEntry struct {
	Name  string `json:"Name"`
	Path  string `json:"Path"`
	Size  *int64 `json:"Size"`
	IsDir bool   `json:"IsDir"`
}

// Client defines the remote transfer behaviour the pipeline depends on.
type Client interface {
	Copy(ctx context.Context, remote, dest string) error
	List(ctx context.Context, remote string, recursive bool) ([]ListingEntry, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBackoff overrides the base delay between retry attempts.
func WithBackoff(delay time.Duration) Option {
	return func(c *CLI) {
		if delay >= 0 {
			c.backoff = delay
		}
	}
}

// CLI wraps the rclone command-line tool.
type CLI struct {
	binary     string
	configPath string
	retries    int
	backoff    time.Duration
	exec       Executor
}

const defaultBackoff = 2 * time.Second

// New constructs an rclone client. configPath may be empty, in which case
// rclone falls back to its own configuration discovery.
func New(binary, configPath string, retries int, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rclone binary required")
	}
	if retries < 1 {
		retries = 1
	}
	client := &CLI{
		binary:     binary,
		configPath: configPath,
		retries:    retries,
		backoff:    defaultBackoff,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Copy transfers a single remote object to dest, creating parent directories
// as needed. rclone's own low-level retries handle flaky chunks; the outer
// loop here retries whole-command failures with linear backoff.
func (c *CLI) Copy(ctx context.Context, remote, dest string) error {
	if remote == "" {
		return errors.New("remote locator required")
	}
	if dest == "" {
		return errors.New("destination path required")
	}
	if err := fileutil.EnsureParentDir(dest); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}
	args := []string{"copyto", remote, dest, "--retries", "1", "--low-level-retries", "10", "--no-traverse"}
	_, err := c.run(ctx, args)
	if err != nil {
		return fmt.Errorf("rclone copyto %s: %w", remote, err)
	}
	return nil
}

// List enumerates files under remote via lsjson.
func (c *CLI) List(ctx context.Context, remote string, recursive bool) ([]ListingEntry, error) {
	if remote == "" {
		return nil, errors.New("remote locator required")
	}
	args := []string{"lsjson", remote, "--files-only"}
	if recursive {
		args = append(args, "--recursive")
	}
	out, err := c.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("rclone lsjson %s: %w", remote, err)
	}
	var entries []ListingEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, fmt.Errorf("parse lsjson output: %w", err)
	}
	return entries, nil
}

func (c *CLI) run(ctx context.Context, args []string) ([]byte, error) {
	full := make([]string, 0, len(args)+2)
	if c.configPath != "" {
		full = append(full, "--config", c.configPath)
	}
	full = append(full, args...)

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		out, err := c.exec.Run(ctx, c.binary, full)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == c.retries {
			break
		}
		delay := time.Duration(attempt) * c.backoff
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = strings.TrimSpace(stdout.String())
		}
		if diagnostic != "" {
			return nil, fmt.Errorf("%w: %s", err, diagnostic)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
