package config

const (
	defaultAOIPath           = "~/chelsa/aoi.geojson"
	defaultListsDir          = "~/chelsa/lists"
	defaultCacheDir          = "~/.cache/chelsa"
	defaultLogDir            = "~/.local/share/chelsa/logs"
	defaultMaxWorkers        = 4
	defaultRetries           = 3
	defaultRcloneBinary      = "rclone"
	defaultWarpBinary        = "gdalwarp"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultNodataValue       = -9999.0
	defaultTraceRemote       = "chelsa01_trace21k_bioclim"
	defaultTraceOutputDir    = "~/chelsa/outputs/trace"
	defaultPresentRemote     = "chelsa02_bioclim"
	defaultPresentSubdir     = "present"
	defaultPresentOutputDir  = "~/chelsa/outputs/present"
	defaultTraceListsSubdir  = "."
	defaultHistoryDBFilename = "history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AOI:      defaultAOIPath,
			ListsDir: defaultListsDir,
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Downloads: Downloads{
			MaxWorkers: defaultMaxWorkers,
			Retries:    defaultRetries,
		},
		Rclone: Rclone{
			Binary: defaultRcloneBinary,
		},
		GDAL: GDAL{
			WarpBinary: defaultWarpBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Trace: Target{
			Remote:      defaultTraceRemote,
			ListsSubdir: defaultTraceListsSubdir,
			OutputDir:   defaultTraceOutputDir,
			NodataValue: defaultNodataValue,
		},
		Present: Target{
			Remote:      defaultPresentRemote,
			ListsSubdir: defaultPresentSubdir,
			OutputDir:   defaultPresentOutputDir,
			NodataValue: defaultNodataValue,
		},
	}
}
