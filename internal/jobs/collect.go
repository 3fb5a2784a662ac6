package jobs

import (
	"fmt"
	"path/filepath"
	"strings"

	"chelsa/internal/config"
	"chelsa/internal/lists"
)

// Job is one self-contained unit of download+clip work. Jobs are built by
// Collect, consumed by the Executor, and never persisted.
type Job struct {
	Kind       lists.Kind
	Variable   string
	Entry      lists.FileEntry
	Metadata   *lists.Metadata
	RemotePath string
	TempPath   string
	OutputPath string
	Nodata     float64
	Force      bool
}

// CollectOptions narrows a collection run.
type CollectOptions struct {
	// Vars restricts collection to the named variables (case-insensitive).
	Vars []string
	// Limit caps the total number of emitted jobs across all variables.
	Limit int
	// Force re-downloads files whose clipped output already exists.
	Force bool
}

// Collect enumerates the manifests for a kind and expands every entry into a
// job. A missing manifest directory yields an empty job list; a missing or
// stale metadata sidecar aborts collection for the kind.
func Collect(cfg *config.Config, kind lists.Kind, opts CollectOptions) ([]Job, error) {
	target, err := targetFor(cfg, kind)
	if err != nil {
		return nil, err
	}

	manifests, err := lists.Manifests(cfg.ListsRoot(target), kind)
	if err != nil {
		return nil, err
	}

	var selected map[string]struct{}
	if len(opts.Vars) > 0 {
		selected = make(map[string]struct{}, len(opts.Vars))
		for _, v := range opts.Vars {
			selected[strings.ToLower(v)] = struct{}{}
		}
	}

	var jobs []Job
	for _, listPath := range manifests {
		manifestKind, variable, ok := lists.ParseManifestVariable(filepath.Base(listPath))
		if !ok || manifestKind != kind {
			continue
		}
		if selected != nil {
			if _, ok := selected[strings.ToLower(variable)]; !ok {
				continue
			}
		}

		metadata, err := lists.LoadMetadata(listPath)
		if err != nil {
			return nil, err
		}

		subdir := remoteSubdir(kind, variable)
		outDir := outputDir(target, kind, variable, subdir)
		for _, entry := range metadata.Files {
			jobs = append(jobs, Job{
				Kind:       kind,
				Variable:   variable,
				Entry:      entry,
				Metadata:   metadata,
				RemotePath: remotePath(target, subdir, entry),
				TempPath:   tempPath(cfg.Paths.CacheDir, kind, variable, entry.Name),
				OutputPath: filepath.Join(outDir, outputName(entry.Name)),
				Nodata:     target.NodataValue,
				Force:      opts.Force,
			})
			if opts.Limit > 0 && len(jobs) >= opts.Limit {
				return jobs, nil
			}
		}
	}
	return jobs, nil
}

func targetFor(cfg *config.Config, kind lists.Kind) (config.Target, error) {
	switch kind {
	case lists.KindTrace:
		return cfg.Trace, nil
	case lists.KindPresent:
		return cfg.Present, nil
	default:
		return config.Target{}, fmt.Errorf("unknown kind %q", kind)
	}
}

func remoteSubdir(kind lists.Kind, variable string) string {
	if kind == lists.KindTrace {
		return TraceRemoteSubdir(variable)
	}
	return PresentRemoteSubdir(variable)
}

// outputDir mirrors the upstream layout: trace outputs group by variable,
// present-day outputs group by remote folder.
func outputDir(target config.Target, kind lists.Kind, variable, subdir string) string {
	if kind == lists.KindTrace {
		return filepath.Join(target.OutputDir, variable)
	}
	return filepath.Join(target.OutputDir, subdir)
}

// remotePath builds the fully qualified locator. An entry that recorded an
// explicit relative path wins over the derived subdir composition.
func remotePath(target config.Target, subdir string, entry lists.FileEntry) string {
	if entry.Path != "" {
		return target.Remote + ":" + joinRemote(target.Prefix, strings.Trim(entry.Path, "/"))
	}
	return target.Remote + ":" + joinRemote(target.Prefix, subdir, entry.Name)
}

func joinRemote(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.Trim(part, "/"); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}

// tempPath namespaces staging files by kind and variable so manifests that
// share a remote basename can never collide in the cache.
func tempPath(cacheDir string, kind lists.Kind, variable, name string) string {
	return filepath.Join(cacheDir, string(kind), variable, name)
}

func outputName(name string) string {
	if strings.HasSuffix(name, ".tif") {
		return strings.TrimSuffix(name, ".tif") + "_AOI.tif"
	}
	return name + "_AOI.tif"
}
