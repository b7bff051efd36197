// Package logparse converts line-oriented xcodebuild output into structured
// events. Two independent grammars exist, one for build invocations and one
// for test invocations; the grammar is selected by the operation kind alone,
// never by line content.
package logparse

// BuildEventKind classifies a single parsed build-output line.
type BuildEventKind string

const (
	KindError    BuildEventKind = "error"
	KindWarning  BuildEventKind = "warning"
	KindNote     BuildEventKind = "note"
	KindSuccess  BuildEventKind = "success"
	KindProgress BuildEventKind = "progress"
)

// BuildEvent is one parsed unit of build output. File, Line and Column are
// populated only for error/warning/note kinds.
type BuildEvent struct {
	Kind    BuildEventKind
	File    string
	Line    int
	Column  int
	Message string
	Raw     string
}

// TestStatus is the terminal state of a single test case.
type TestStatus string

const (
	StatusPassed  TestStatus = "passed"
	StatusFailed  TestStatus = "failed"
	StatusSkipped TestStatus = "skipped"
)

// TestCaseResult is the outcome of one test case. A (Suite, Case) pair is
// unique within a run; a re-run of the same case overwrites the earlier
// result rather than accumulating.
type TestCaseResult struct {
	Suite           string
	Case            string
	Status          TestStatus
	DurationSeconds float64
	FailureMessage  string
}

// TestEventKind classifies a parsed test-output line for the live feed.
type TestEventKind string

const (
	TestEventSuiteStarted  TestEventKind = "suiteStarted"
	TestEventSuiteFinished TestEventKind = "suiteFinished"
	TestEventCaseFinished  TestEventKind = "caseFinished"
	TestEventNoise         TestEventKind = "noise"
)

// TestEvent is emitted for every recognized test-output line. Case is set
// only for TestEventCaseFinished.
type TestEvent struct {
	Kind  TestEventKind
	Suite string
	Case  *TestCaseResult
	Raw   string
}
