package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"chelsa/internal/config"
	"chelsa/internal/lists"
	"chelsa/internal/logging"
	"chelsa/internal/services/rclone"
)

func newPrepareListsCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var sourceJSON string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "prepare-lists",
		Short: "Build download manifests and their metadata sidecars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if refresh {
				return refreshManifests(cmd, cfg)
			}

			kind := lists.Kind(kindFlag)
			switch kind {
			case lists.KindTrace:
				source := sourceJSON
				if source == "" {
					source = cfg.Paths.TraceFilelistJSON
				}
				written, err := lists.BuildTraceLists(source, cfg.ListsRoot(cfg.Trace))
				if err != nil {
					return err
				}
				logger.Info("trace manifests written", logging.Int("variables", len(written)))
				reportManifests(cmd, written)
			case lists.KindPresent:
				written, err := buildPresentManifests(cmd, cfg, ctx)
				if err != nil {
					return err
				}
				logger.Info("present manifests written", logging.Int("variables", len(written)))
				reportManifests(cmd, written)
			default:
				return fmt.Errorf("unknown kind %q (expected trace or present)", kindFlag)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "trace", "Dataset kind to prepare (trace or present)")
	cmd.Flags().StringVar(&sourceJSON, "source-json", "", "Trace source listing JSON (defaults to paths.trace_filelist_json)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-stamp metadata digests for manifests edited by hand")
	return cmd
}

func buildPresentManifests(cmd *cobra.Command, cfg *config.Config, ctx *commandContext) (map[string]string, error) {
	client, err := rclone.New(cfg.Rclone.Binary, cfg.Rclone.Config, cfg.Downloads.Retries)
	if err != nil {
		return nil, err
	}
	remote := cfg.Present.Remote + ":" + cfg.Present.Prefix
	records, err := client.List(cmd.Context(), remote, true)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", remote, err)
	}
	return lists.BuildPresentLists(records, cfg.ListsRoot(cfg.Present))
}

func refreshManifests(cmd *cobra.Command, cfg *config.Config) error {
	updated, err := lists.RefreshMetadata(cfg.Paths.ListsDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %d metadata sidecar(s)\n", updated)
	return nil
}

func reportManifests(cmd *cobra.Command, written map[string]string) {
	variables := make([]string, 0, len(written))
	for variable := range written {
		variables = append(variables, variable)
	}
	sort.Strings(variables)

	rows := make([][]string, 0, len(variables))
	for _, variable := range variables {
		rows = append(rows, []string{variable, written[variable]})
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No manifests written")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Variable", "Manifest"},
		rows,
		[]columnAlignment{alignLeft, alignLeft},
	))
}
