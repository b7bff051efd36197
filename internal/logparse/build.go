package logparse

import (
	"regexp"
	"strconv"
)

// Static regexes for the build grammar.
// Compiled once at package init for performance.
var (
	// /path/to/File.swift:10:3: error: missing semicolon
	diagnosticRegex = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+(error|warning|note):\s+(.*)$`)

	// ** BUILD SUCCEEDED ** / BUILD FAILED / ** TEST SUCCEEDED ** etc.
	statusLineRegex = regexp.MustCompile(`^\s*(?:\*\*\s*)?(?:CLEAN|BUILD|TEST|ARCHIVE)\s+(SUCCEEDED|FAILED)(?:\s*\*\*)?\s*$`)
)

// BuildParser is the streaming build grammar. Feed it lines in arrival order;
// it has no time-dependent state, so re-parsing identical input yields
// identical results.
type BuildParser struct {
	errors   []BuildEvent
	warnings []BuildEvent

	sawTerminalSuccess bool
	sawTerminalFailure bool
}

// NewBuildParser creates an empty build parser.
func NewBuildParser() *BuildParser {
	return &BuildParser{}
}

// Feed classifies one output line and returns the resulting event. Lines that
// match no pattern are classified progress: they drive live display but are
// never aggregated.
func (p *BuildParser) Feed(line string) BuildEvent {
	if m := diagnosticRegex.FindStringSubmatch(line); m != nil {
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		ev := BuildEvent{
			Kind:    BuildEventKind(m[4]),
			File:    m[1],
			Line:    lineNo,
			Column:  col,
			Message: m[5],
			Raw:     line,
		}
		switch ev.Kind {
		case KindError:
			p.errors = append(p.errors, ev)
		case KindWarning:
			p.warnings = append(p.warnings, ev)
		}
		return ev
	}

	if m := statusLineRegex.FindStringSubmatch(line); m != nil {
		if m[1] == "SUCCEEDED" {
			p.sawTerminalSuccess = true
		} else {
			p.sawTerminalFailure = true
		}
		return BuildEvent{Kind: KindSuccess, Message: line, Raw: line}
	}

	return BuildEvent{Kind: KindProgress, Message: line, Raw: line}
}

// Errors returns all error events observed so far.
func (p *BuildParser) Errors() []BuildEvent {
	return p.errors
}

// Warnings returns all warning events observed so far.
func (p *BuildParser) Warnings() []BuildEvent {
	return p.warnings
}

// RecordError appends a synthetic error event that did not originate from a
// parsed line (e.g. "process exited with code N" when the tool failed without
// printing a diagnostic).
func (p *BuildParser) RecordError(message string) {
	p.errors = append(p.errors, BuildEvent{Kind: KindError, Message: message, Raw: message})
}

// Succeeded reports overall build success. An observed error event always
// wins over a later "BUILD SUCCEEDED" line and over a zero exit code: some
// toolchains return 0 with embedded fatal errors, so the exit code alone is
// not trusted.
func (p *BuildParser) Succeeded(exitCode int) bool {
	if len(p.errors) > 0 {
		return false
	}
	if p.sawTerminalFailure {
		return false
	}
	return exitCode == 0
}
