// Package config provides configuration loading and validation for
// xcpipe.yaml.
package config

// Config represents the complete xcpipe.yaml configuration.
type Config struct {
	Project     ProjectConfig      `yaml:"project"`
	Build       *BuildConfig       `yaml:"build,omitempty"`
	Diagnostics *DiagnosticsConfig `yaml:"diagnostics,omitempty"`
}

// ProjectConfig identifies the project to operate on. Every field is
// optional; unset fields are filled by discovery against the checkout.
type ProjectConfig struct {
	Path      string `yaml:"path,omitempty"`      // checkout root, default "."
	File      string `yaml:"file,omitempty"`      // MyApp.xcworkspace or MyApp.xcodeproj
	Workspace bool   `yaml:"workspace,omitempty"` // derived from File's extension when File is set
	Scheme    string `yaml:"scheme,omitempty"`
	BundleID  string `yaml:"bundle_id,omitempty"`
}

// BuildConfig configures build and test invocations.
type BuildConfig struct {
	Configuration  string `yaml:"configuration,omitempty"`
	Destination    string `yaml:"destination,omitempty"` // simulator/device identifier
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	TestFilter     string `yaml:"test_filter,omitempty"`
}

// DiagnosticsConfig configures the source scan.
type DiagnosticsConfig struct {
	LargeFileThreshold int      `yaml:"large_file_threshold,omitempty"`
	Exclude            []string `yaml:"exclude,omitempty"` // extra directory names to skip
}
