package config

import (
	"fmt"
	"strings"
)

// longTimeoutSeconds is the point past which a timeout is suspicious enough
// to warn about (4 hours).
const longTimeoutSeconds = 4 * 60 * 60

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for
// non-fatal issues. Callers should apply defaults first.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateProject(cfg); err != nil {
		return nil, err
	}

	buildWarnings, err := validateBuild(cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, buildWarnings...)

	if err := validateDiagnostics(cfg); err != nil {
		return warnings, err
	}

	return warnings, nil
}

func validateProject(cfg *Config) error {
	if cfg.Project.File == "" {
		return nil
	}
	if !strings.HasSuffix(cfg.Project.File, ".xcworkspace") && !strings.HasSuffix(cfg.Project.File, ".xcodeproj") {
		return &ValidationError{
			Field:   "project.file",
			Message: "must end in .xcworkspace or .xcodeproj",
		}
	}
	if strings.ContainsAny(cfg.Project.File, "/\\") {
		return &ValidationError{
			Field:   "project.file",
			Message: "must be a bare file name relative to project.path",
		}
	}
	return nil
}

func validateBuild(cfg *Config) ([]string, error) {
	if cfg.Build == nil {
		return nil, nil
	}
	if cfg.Build.TimeoutSeconds < 0 {
		return nil, &ValidationError{
			Field:   "build.timeout_seconds",
			Message: "must not be negative",
		}
	}

	var warnings []string
	if cfg.Build.TimeoutSeconds > longTimeoutSeconds {
		warnings = append(warnings, fmt.Sprintf(
			"build.timeout_seconds is %d (more than 4 hours); a hung invocation will block for that long",
			cfg.Build.TimeoutSeconds))
	}
	return warnings, nil
}

func validateDiagnostics(cfg *Config) error {
	if cfg.Diagnostics == nil {
		return nil
	}
	if cfg.Diagnostics.LargeFileThreshold < 0 {
		return &ValidationError{
			Field:   "diagnostics.large_file_threshold",
			Message: "must not be negative",
		}
	}
	for _, name := range cfg.Diagnostics.Exclude {
		if name == "" || strings.ContainsAny(name, "/\\") {
			return &ValidationError{
				Field:   "diagnostics.exclude",
				Message: fmt.Sprintf("%q is not a directory name", name),
			}
		}
	}
	return nil
}
