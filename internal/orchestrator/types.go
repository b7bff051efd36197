// Package orchestrator composes process streaming and result parsing into
// named operations (build, test). It owns timeouts and cancellation and
// aggregates parser output into final results.
package orchestrator

import (
	"github.com/xcpipe/xcpipe/internal/logparse"
)

// Kind is the operation kind. The result-parser grammar is selected by the
// kind alone, never by line content.
type Kind string

const (
	KindBuild Kind = "build"
	KindTest  Kind = "test"
)

// Status is the operation state. Transitions are
// NotStarted -> Spawning -> Streaming -> (Completed|Failed|TimedOut|Cancelled)
// and are atomic: no caller ever observes an intermediate state.
type Status int32

const (
	StatusNotStarted Status = iota
	StatusSpawning
	StatusStreaming
	StatusCompleted
	StatusFailed
	StatusTimedOut
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusSpawning:
		return "spawning"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed out"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// Config describes one orchestrated invocation. It is supplied by project
// discovery and carries everything needed to build the xcodebuild command
// line.
type Config struct {
	ProjectPath    string // working directory for the invocation
	ProjectFile    string // MyApp.xcworkspace or MyApp.xcodeproj
	Workspace      bool
	Scheme         string
	Configuration  string // Debug, Release, or a custom configuration
	Destination    string // simulator or device identifier
	TimeoutSeconds int    // 0 means no timeout
	TestFilter     string // optional -only-testing: pattern
}

// BuildResult is the aggregate outcome of one build operation. Succeeded is
// true only with positive evidence: exit code 0, a terminal status of
// Completed, and zero observed error events.
type BuildResult struct {
	Status          Status
	Succeeded       bool
	ExitCode        int
	DurationSeconds float64
	Errors          []logparse.BuildEvent
	Warnings        []logparse.BuildEvent
}

// TestRunResult is the aggregate outcome of one test operation.
// Total == Passed+Failed+Skipped == len(Cases) always holds.
type TestRunResult struct {
	Status               Status
	Succeeded            bool
	ExitCode             int
	Total                int
	Passed               int
	Failed               int
	Skipped              int
	TotalDurationSeconds float64
	Cases                []logparse.TestCaseResult

	// Notes carries synthetic findings that did not come from parsed
	// output, e.g. "process exited with code N" when the runner failed
	// without reporting any case failures.
	Notes []string
}

// Event is one emission on an operation's live progress feed: one per
// consumed output line. The feed is best-effort and lossy under
// backpressure; a slow consumer degrades to latest-only and never blocks
// the orchestrator.
type Event struct {
	OperationID string
	Kind        Kind
	Seq         uint64
	Line        string
	Build       *logparse.BuildEvent
	Test        *logparse.TestEvent
}
