package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWantsHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "short flag", args: []string{"-h"}, want: true},
		{name: "long flag", args: []string{"--help"}, want: true},
		{name: "after command args", args: []string{"validate", "--help"}, want: true},
		{name: "no help", args: []string{"validate"}, want: false},
		{name: "empty", args: nil, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := wantsHelp(tt.args); got != tt.want {
				t.Errorf("wantsHelp(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseGlobalFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		args          []string
		wantRemaining []string
		check         func(t *testing.T, opts *GlobalOptions)
		wantErr       bool
	}{
		{
			name:          "no flags",
			args:          []string{"build"},
			wantRemaining: []string{"build"},
		},
		{
			name:          "quiet short",
			args:          []string{"-q", "test"},
			wantRemaining: []string{"test"},
			check: func(t *testing.T, opts *GlobalOptions) {
				if !opts.Quiet {
					t.Error("Quiet = false")
				}
			},
		},
		{
			name:          "flags after command",
			args:          []string{"build", "--scheme", "MyApp", "--configuration=Release"},
			wantRemaining: []string{"build"},
			check: func(t *testing.T, opts *GlobalOptions) {
				if opts.Scheme != "MyApp" {
					t.Errorf("Scheme = %q", opts.Scheme)
				}
				if opts.Configuration != "Release" {
					t.Errorf("Configuration = %q", opts.Configuration)
				}
			},
		},
		{
			name:          "timeout",
			args:          []string{"build", "--timeout", "600"},
			wantRemaining: []string{"build"},
			check: func(t *testing.T, opts *GlobalOptions) {
				if opts.Timeout != 600 {
					t.Errorf("Timeout = %d", opts.Timeout)
				}
			},
		},
		{
			name:          "timeout unset defaults to -1",
			args:          []string{"build"},
			wantRemaining: []string{"build"},
			check: func(t *testing.T, opts *GlobalOptions) {
				if opts.Timeout != -1 {
					t.Errorf("Timeout = %d, want -1 (unset)", opts.Timeout)
				}
			},
		},
		{
			name:          "filter and destination",
			args:          []string{"test", "--filter=MyAppTests/Login", "--destination", "UDID-1"},
			wantRemaining: []string{"test"},
			check: func(t *testing.T, opts *GlobalOptions) {
				if opts.TestFilter != "MyAppTests/Login" {
					t.Errorf("TestFilter = %q", opts.TestFilter)
				}
				if opts.Destination != "UDID-1" {
					t.Errorf("Destination = %q", opts.Destination)
				}
			},
		},
		{
			name:    "timeout not a number",
			args:    []string{"build", "--timeout", "soon"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			args:    []string{"build", "--timeout=-5"},
			wantErr: true,
		},
		{
			name:    "missing value",
			args:    []string{"build", "--scheme"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, remaining, err := parseGlobalFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGlobalFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(remaining) != len(tt.wantRemaining) {
				t.Fatalf("remaining = %v, want %v", remaining, tt.wantRemaining)
			}
			for i := range remaining {
				if remaining[i] != tt.wantRemaining[i] {
					t.Errorf("remaining[%d] = %q, want %q", i, remaining[i], tt.wantRemaining[i])
				}
			}
			if tt.check != nil {
				tt.check(t, opts)
			}
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if code := Run([]string{"frobnicate"}); code == 0 {
		t.Error("Run() returned 0 for an unknown command")
	}
}

func TestRun_Version(t *testing.T) {
	if code := Run([]string{"version"}); code != 0 {
		t.Errorf("Run(version) = %d, want 0", code)
	}
}

func TestCmdConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xcpipe.yaml")
	content := "project:\n  scheme: MyApp\nbuild:\n  timeout_seconds: 600\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if code := cmdConfig([]string{"validate"}, &GlobalOptions{ConfigPath: path, Timeout: -1}); code != 0 {
		t.Errorf("cmdConfig() = %d, want 0", code)
	}
}

func TestCmdConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xcpipe.yaml")
	if err := os.WriteFile(path, []byte("build:\n  timeout_seconds: -9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if code := cmdConfig(nil, &GlobalOptions{ConfigPath: path, Timeout: -1}); code == 0 {
		t.Error("cmdConfig() = 0 for an invalid config")
	}
}

func TestCmdConfig_MissingFile(t *testing.T) {
	if code := cmdConfig(nil, &GlobalOptions{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"), Timeout: -1}); code == 0 {
		t.Error("cmdConfig() = 0 for a missing config")
	}
}

func TestLoadConfig_OverridesApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xcpipe.yaml")
	content := "project:\n  scheme: FromFile\nbuild:\n  configuration: Debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts := &GlobalOptions{
		ConfigPath:    path,
		Scheme:        "FromFlag",
		Configuration: "Release",
		Timeout:       90,
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Project.Scheme != "FromFlag" {
		t.Errorf("Scheme = %q, flags must win over the file", cfg.Project.Scheme)
	}
	if cfg.Build.Configuration != "Release" {
		t.Errorf("Configuration = %q", cfg.Build.Configuration)
	}
	if cfg.Build.TimeoutSeconds != 90 {
		t.Errorf("TimeoutSeconds = %d", cfg.Build.TimeoutSeconds)
	}
}

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	opts := &GlobalOptions{ProjectPath: t.TempDir(), Timeout: -1}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Build.Configuration != "Debug" {
		t.Errorf("Configuration = %q, want default Debug", cfg.Build.Configuration)
	}
}

func TestOperationConfig_Discovery(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "MyApp.xcworkspace"), 0o755); err != nil {
		t.Fatal(err)
	}

	opts := &GlobalOptions{ProjectPath: dir, Timeout: -1}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	ocfg, err := operationConfig(cfg)
	if err != nil {
		t.Fatalf("operationConfig() error = %v", err)
	}
	if ocfg.ProjectFile != "MyApp.xcworkspace" || !ocfg.Workspace {
		t.Errorf("discovered %+v, want the workspace", ocfg)
	}
	if ocfg.Scheme != "MyApp" {
		t.Errorf("Scheme = %q, want MyApp", ocfg.Scheme)
	}
}

func TestContainerName(t *testing.T) {
	t.Parallel()
	if got := containerName("MyApp.xcworkspace"); got != "MyApp" {
		t.Errorf("containerName() = %q", got)
	}
	if got := containerName("MyApp.xcodeproj"); got != "MyApp" {
		t.Errorf("containerName() = %q", got)
	}
}
