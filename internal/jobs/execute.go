package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"chelsa/internal/config"
	"chelsa/internal/logging"
	"chelsa/internal/services"
	"chelsa/internal/services/raster"
	"chelsa/internal/services/rclone"
)

// transferPollInterval is how often a job's staging file is sampled for
// progress reporting.
const transferPollInterval = 200 * time.Millisecond

// Summary aggregates per-job outcomes for one run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of jobs the summary accounts for.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// tally is the mutable counter structure shared by workers. Workers update
// it under the mutex; Run snapshots it after the pool drains.
type tally struct {
	mu sync.Mutex
	s  Summary
}

func (t *tally) add(update func(*Summary)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	update(&t.s)
}

func (t *tally) snapshot() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

// Executor runs collected jobs through the transfer and transform adapters.
type Executor struct {
	cfg       *config.Config
	transfer  rclone.Client
	transform raster.Transformer
	logger    *slog.Logger
}

// NewExecutor wires an executor. A nil logger falls back to a no-op logger.
func NewExecutor(cfg *config.Config, transfer rclone.Client, transform raster.Transformer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		cfg:       cfg,
		transfer:  transfer,
		transform: transform,
		logger:    logging.NewComponentLogger(logger, "executor"),
	}
}

// Run executes jobs under a bounded worker pool and returns the run summary.
// Zero jobs is a warning, not an error. The AOI geometry is checked once and
// shared read-only by every worker; structural problems with it abort the
// run before any job starts.
func (e *Executor) Run(ctx context.Context, jobList []Job, maxWorkers int) (Summary, error) {
	if len(jobList) == 0 {
		e.logger.Warn("no jobs found; ensure you ran `chelsa prepare-lists`")
		return Summary{}, nil
	}

	if err := os.MkdirAll(e.cfg.Paths.CacheDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create cache directory: %w", err)
	}
	if err := raster.CheckAOI(e.cfg.Paths.AOI); err != nil {
		return Summary{}, services.Wrap(services.ErrNotFound, "executor", "load AOI", e.cfg.Paths.AOI, err)
	}

	workers := maxWorkers
	if workers <= 0 {
		workers = e.cfg.Downloads.MaxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	overall := newOverallProgress(len(jobList))
	defer overall.finish()

	counters := &tally{}
	queue := make(chan Job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				e.runJob(ctx, job, counters)
				overall.advance()
			}
		}()
	}
	for _, job := range jobList {
		queue <- job
	}
	close(queue)
	wg.Wait()

	return counters.snapshot(), nil
}

// runJob drives one job start-to-finish on a single worker: skip check,
// transfer, size verification, transform, staging cleanup.
func (e *Executor) runJob(ctx context.Context, job Job, counters *tally) {
	if _, err := os.Stat(job.OutputPath); err == nil && !job.Force {
		counters.add(func(s *Summary) { s.Skipped++ })
		e.logger.Debug("skipped existing output",
			logging.String("variable", job.Variable),
			logging.String("file", job.Entry.Name))
		return
	}

	stop := make(chan struct{})
	go e.monitorTransfer(job, stop)

	err := e.transfer.Copy(ctx, job.RemotePath, job.TempPath)
	close(stop)
	if err != nil {
		e.fail(counters, job, services.Wrap(services.ErrTransfer, "rclone", "copyto", job.Entry.Name, err))
		return
	}

	if job.Entry.Size != nil {
		info, statErr := os.Stat(job.TempPath)
		if statErr != nil {
			e.fail(counters, job, services.Wrap(services.ErrTransfer, "rclone", "verify", job.Entry.Name, statErr))
			return
		}
		if info.Size() != *job.Entry.Size {
			e.fail(counters, job, services.Wrap(services.ErrTransfer, "rclone", "verify",
				fmt.Sprintf("size mismatch for %s: %d != %d", job.Entry.Name, info.Size(), *job.Entry.Size), nil))
			return
		}
	}

	if err := e.transform.ClipFill(ctx, job.TempPath, job.OutputPath, e.cfg.Paths.AOI, job.Nodata); err != nil {
		e.fail(counters, job, services.Wrap(services.ErrTransform, "raster", "clip", job.Entry.Name, err))
		return
	}

	if err := os.Remove(job.TempPath); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("could not remove staging file",
			logging.String("path", job.TempPath),
			logging.Error(err))
	}

	counters.add(func(s *Summary) { s.Processed++ })
	e.logger.Info("processed",
		logging.String("variable", job.Variable),
		logging.String("file", job.Entry.Name),
		logging.String("output", job.OutputPath))
}

// fail isolates one job's error: count it, log it, best-effort remove the
// partial staging file, and let sibling jobs continue.
func (e *Executor) fail(counters *tally, job Job, err error) {
	counters.add(func(s *Summary) { s.Failed++ })
	e.logger.Error("job failed",
		logging.String("variable", job.Variable),
		logging.String("file", job.Entry.Name),
		logging.Error(err))
	if removeErr := os.Remove(job.TempPath); removeErr != nil && !os.IsNotExist(removeErr) {
		e.logger.Warn("could not remove staging file",
			logging.String("path", job.TempPath),
			logging.Error(removeErr))
	}
}

// monitorTransfer samples the growing staging file at a fixed interval and
// reports progress against the expected size when the manifest recorded one.
// It is a pure observer and does not count against the worker bound.
func (e *Executor) monitorTransfer(job Job, stop <-chan struct{}) {
	sampler := logging.NewProgressSampler(10)
	ticker := time.NewTicker(transferPollInterval)
	defer ticker.Stop()

	var expected int64 = -1
	if job.Entry.Size != nil && *job.Entry.Size > 0 {
		expected = *job.Entry.Size
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			info, err := os.Stat(job.TempPath)
			if err != nil {
				continue
			}
			percent := -1.0
			if expected > 0 {
				percent = float64(info.Size()) / float64(expected) * 100
				if percent > 100 {
					percent = 100
				}
			}
			if !sampler.ShouldLog(percent, "transfer") {
				continue
			}
			attrs := []logging.Attr{
				logging.String("variable", job.Variable),
				logging.String("file", job.Entry.Name),
				logging.Int64("bytes", info.Size()),
			}
			if percent >= 0 {
				attrs = append(attrs, logging.Float64("percent", percent))
			}
			e.logger.Debug("transfer progress", logging.Args(attrs...)...)
		}
	}
}
