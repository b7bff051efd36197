package logparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Static regexes for the test grammar.
// The tool's exact text format is an external, unversioned contract; these
// rules are kept independent and covered by fixture tests in isolation.
var (
	// Test Suite 'MyAppTests' started at 2024-03-01 10:00:00.000
	suiteStartRegex = regexp.MustCompile(`^Test Suite '(.+?)' started`)

	// Test Suite 'MyAppTests' passed at 2024-03-01 10:00:02.000.
	suiteEndRegex = regexp.MustCompile(`^Test Suite '(.+?)' (passed|failed)`)

	// Test Case '-[MyAppTests testLogin]' passed (0.123 seconds).
	testCaseRegex = regexp.MustCompile(`^Test Case '(.+?)' (passed|failed|skipped) \(([0-9.]+) seconds\)`)

	// Executed 2 tests, with 1 failure (0 unexpected) in 0.171 (0.173) seconds
	summaryRegex = regexp.MustCompile(`Executed (\d+) tests?, with (\d+) failures?(?:.*?in ([0-9.]+))?`)
)

type suiteState int

const (
	suiteIdle suiteState = iota
	suiteRunning
	suitePassed
	suiteFailed
)

type caseKey struct {
	suite string
	name  string
}

// TestParser is the streaming test grammar: a small state machine per suite
// plus an ordered set of case results. Unparseable lines inside a running
// suite are ignored, which keeps the parser forward-compatible with verbose
// or noisy output.
type TestParser struct {
	suites map[string]suiteState

	order []caseKey
	cases map[caseKey]*TestCaseResult

	// failure-message capture for the most recent failed case
	capturing  *TestCaseResult
	captureBuf []string

	summaryTotal    int
	summaryFailures int
	summarySeen     bool
	elapsedSeconds  float64
}

// NewTestParser creates an empty test parser.
func NewTestParser() *TestParser {
	return &TestParser{
		suites: make(map[string]suiteState),
		cases:  make(map[caseKey]*TestCaseResult),
	}
}

// Feed consumes one output line and returns the event it produced.
func (p *TestParser) Feed(line string) TestEvent {
	if m := suiteStartRegex.FindStringSubmatch(line); m != nil {
		p.endCapture()
		p.suites[m[1]] = suiteRunning
		return TestEvent{Kind: TestEventSuiteStarted, Suite: m[1], Raw: line}
	}

	if m := testCaseRegex.FindStringSubmatch(line); m != nil {
		p.endCapture()
		suite, name := splitTestName(m[1])
		duration, _ := strconv.ParseFloat(m[3], 64)
		result := &TestCaseResult{
			Suite:           suite,
			Case:            name,
			Status:          TestStatus(m[2]),
			DurationSeconds: duration,
		}
		p.record(result)
		if p.suites[suite] == suiteIdle {
			// Case seen without a suite announcement; treat the suite as running.
			p.suites[suite] = suiteRunning
		}
		if result.Status == StatusFailed {
			p.capturing = result
			p.captureBuf = nil
		}
		return TestEvent{Kind: TestEventCaseFinished, Suite: suite, Case: result, Raw: line}
	}

	if m := suiteEndRegex.FindStringSubmatch(line); m != nil {
		p.endCapture()
		if m[2] == "passed" {
			p.suites[m[1]] = suitePassed
		} else {
			p.suites[m[1]] = suiteFailed
		}
		return TestEvent{Kind: TestEventSuiteFinished, Suite: m[1], Raw: line}
	}

	if m := summaryRegex.FindStringSubmatch(line); m != nil {
		p.endCapture()
		p.summaryTotal, _ = strconv.Atoi(m[1])
		p.summaryFailures, _ = strconv.Atoi(m[2])
		p.summarySeen = true
		if m[3] != "" {
			p.elapsedSeconds, _ = strconv.ParseFloat(m[3], 64)
		}
		return TestEvent{Kind: TestEventNoise, Raw: line}
	}

	// Unrecognized line. Indented lines immediately after a failed case are
	// its failure detail; anything else ends the capture and is ignored.
	if p.capturing != nil {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			p.captureBuf = append(p.captureBuf, strings.TrimSpace(line))
		} else {
			p.endCapture()
		}
	}
	return TestEvent{Kind: TestEventNoise, Raw: line}
}

// record stores a case result, overwriting an earlier result for the same
// (suite, case) key in place: re-runs replace, never accumulate, and the
// case keeps its original position in the ordered sequence.
func (p *TestParser) record(result *TestCaseResult) {
	key := caseKey{suite: result.Suite, name: result.Case}
	if _, seen := p.cases[key]; !seen {
		p.order = append(p.order, key)
	}
	p.cases[key] = result
}

// endCapture flushes buffered failure detail into the failed case.
func (p *TestParser) endCapture() {
	if p.capturing != nil && len(p.captureBuf) > 0 {
		p.capturing.FailureMessage = strings.Join(p.captureBuf, "\n")
	}
	p.capturing = nil
	p.captureBuf = nil
}

// Cases returns the ordered case results observed so far.
func (p *TestParser) Cases() []TestCaseResult {
	p.endCapture()
	results := make([]TestCaseResult, 0, len(p.order))
	for _, key := range p.order {
		results = append(results, *p.cases[key])
	}
	return results
}

// Counts returns the per-status case counts.
func (p *TestParser) Counts() (passed, failed, skipped int) {
	for _, key := range p.order {
		switch p.cases[key].Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Summary returns the totals reported by the runner's own
// "Executed N tests, with M failures" line, for cross-checking against the
// parsed case results. seen is false when no summary line was observed.
func (p *TestParser) Summary() (total, failures int, seen bool) {
	return p.summaryTotal, p.summaryFailures, p.summarySeen
}

// TotalDuration returns the run's elapsed seconds: the summary line's elapsed
// time when one was parsed, otherwise the sum of individual case durations.
func (p *TestParser) TotalDuration() float64 {
	if p.elapsedSeconds > 0 {
		return p.elapsedSeconds
	}
	var total float64
	for _, key := range p.order {
		total += p.cases[key].DurationSeconds
	}
	return total
}

// splitTestName extracts suite and case names from an xcodebuild test
// identifier. The usual shape is '-[SuiteName testCase]'; a dotted
// 'Bundle.SuiteName.testCase' form appears with some runners.
func splitTestName(full string) (suite, name string) {
	if strings.HasPrefix(full, "-[") && strings.HasSuffix(full, "]") {
		inner := full[2 : len(full)-1]
		if idx := strings.IndexByte(inner, ' '); idx != -1 {
			return inner[:idx], inner[idx+1:]
		}
		return "", inner
	}
	if idx := strings.LastIndexByte(full, '.'); idx != -1 {
		rest := full[:idx]
		name = full[idx+1:]
		if j := strings.LastIndexByte(rest, '.'); j != -1 {
			return rest[j+1:], name
		}
		return rest, name
	}
	return "", full
}
