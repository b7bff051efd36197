package orchestrator

import (
	"github.com/xcpipe/xcpipe/internal/procstream"
)

// xcodebuildCommand is overridable so operation plumbing can be exercised
// against scripted subprocesses.
const xcodebuildCommand = "xcodebuild"

// Invocation builds the process spec for one operation kind. It is a pure
// function of the kind and the config so the command line can be inspected
// without spawning anything.
func Invocation(kind Kind, cfg Config) procstream.Spec {
	var args []string

	switch kind {
	case KindTest:
		args = append(args, "test")
	default:
		args = append(args, "clean", "build")
	}

	if cfg.ProjectFile != "" {
		if cfg.Workspace {
			args = append(args, "-workspace", cfg.ProjectFile)
		} else {
			args = append(args, "-project", cfg.ProjectFile)
		}
	}
	if cfg.Scheme != "" {
		args = append(args, "-scheme", cfg.Scheme)
	}
	if cfg.Configuration != "" {
		args = append(args, "-configuration", cfg.Configuration)
	}
	if cfg.Destination != "" {
		args = append(args, "-destination", "id="+cfg.Destination)
	}
	if kind == KindTest && cfg.TestFilter != "" {
		args = append(args, "-only-testing:"+cfg.TestFilter)
	}

	return procstream.Spec{
		Command: xcodebuildCommand,
		Args:    args,
		Dir:     cfg.ProjectPath,
	}
}
