package config

import "strings"

// Default configuration values.
const (
	DefaultProjectPath        = "."
	DefaultConfiguration      = "Debug"
	DefaultTimeoutSeconds     = 1800
	DefaultLargeFileThreshold = 500
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyProjectDefaults(cfg)
	applyBuildDefaults(cfg)
	applyDiagnosticsDefaults(cfg)
}

func applyProjectDefaults(cfg *Config) {
	if cfg.Project.Path == "" {
		cfg.Project.Path = DefaultProjectPath
	}
	// The container file's extension is authoritative for the workspace flag.
	if cfg.Project.File != "" {
		cfg.Project.Workspace = strings.HasSuffix(cfg.Project.File, ".xcworkspace")
	}
}

func applyBuildDefaults(cfg *Config) {
	if cfg.Build == nil {
		cfg.Build = &BuildConfig{}
	}
	if cfg.Build.Configuration == "" {
		cfg.Build.Configuration = DefaultConfiguration
	}
	if cfg.Build.TimeoutSeconds == 0 {
		cfg.Build.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

func applyDiagnosticsDefaults(cfg *Config) {
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = &DiagnosticsConfig{}
	}
	if cfg.Diagnostics.LargeFileThreshold == 0 {
		cfg.Diagnostics.LargeFileThreshold = DefaultLargeFileThreshold
	}
}
