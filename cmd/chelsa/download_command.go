package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chelsa/internal/history"
	"chelsa/internal/jobs"
	"chelsa/internal/lists"
	"chelsa/internal/logging"
	"chelsa/internal/services/raster"
	"chelsa/internal/services/rclone"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var vars []string
	var limit int
	var force bool
	var maxWorkers int

	cmd := &cobra.Command{
		Use:       "download {trace|present}",
		Short:     "Download manifest entries and clip them to the AOI",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"trace", "present"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := lists.Kind(args[0])
			if kind != lists.KindTrace && kind != lists.KindPresent {
				return fmt.Errorf("unknown kind %q (expected trace or present)", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "chelsa.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another chelsa download is already running")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			jobList, err := jobs.Collect(cfg, kind, jobs.CollectOptions{
				Vars:  vars,
				Limit: limit,
				Force: force,
			})
			if err != nil {
				return err
			}

			transfer, err := rclone.New(cfg.Rclone.Binary, cfg.Rclone.Config, cfg.Downloads.Retries)
			if err != nil {
				return err
			}
			transform, err := raster.New(cfg.GDAL.WarpBinary)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			started := time.Now().UTC()
			logger.Info("download run starting",
				logging.String("run_id", runID),
				logging.String("kind", string(kind)),
				logging.Int("jobs", len(jobList)))

			executor := jobs.NewExecutor(cfg, transfer, transform, logger)
			summary, err := executor.Run(cmd.Context(), jobList, maxWorkers)
			if err != nil {
				return err
			}

			recordErr := recordRun(cmd, cfg.Paths.HistoryDB, history.Run{
				ID:         runID,
				Kind:       string(kind),
				Variables:  variablesLabel(vars),
				Processed:  summary.Processed,
				Skipped:    summary.Skipped,
				Failed:     summary.Failed,
				StartedAt:  started,
				FinishedAt: time.Now().UTC(),
			})
			if recordErr != nil {
				logger.Warn("record run history", logging.Error(recordErr))
			}

			printSummary(cmd, summary)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d job(s) failed", summary.Failed, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&vars, "var", nil, "Restrict to the named variables (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Cap the total number of jobs (0 means no cap)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-download files whose clipped output already exists")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Override downloads.max_workers for this run")
	return cmd
}

func recordRun(cmd *cobra.Command, dbPath string, run history.Run) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(cmd.Context(), run)
}

func variablesLabel(vars []string) string {
	if len(vars) == 0 {
		return "all"
	}
	return strings.Join(vars, ",")
}

func printSummary(cmd *cobra.Command, summary jobs.Summary) {
	rows := [][]string{
		{"Processed", strconv.Itoa(summary.Processed)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Total", strconv.Itoa(summary.Total())},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Outcome", "Files"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}
