// Package diagnostics derives code-quality findings from build output and
// from a read-only scan of project source files.
package diagnostics

import (
	"github.com/xcpipe/xcpipe/internal/logparse"
)

// Severity of a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category of a finding.
type Category string

const (
	CategoryForceUnwrap     Category = "forceUnwrap"
	CategoryDebugPrint      Category = "debugPrint"
	CategoryLargeFile       Category = "largeFile"
	CategoryCompilerError   Category = "compilerError"
	CategoryCompilerWarning Category = "compilerWarning"
)

// Finding is a single quality issue. Immutable once created.
type Finding struct {
	Severity Severity
	Category Category
	File     string
	Line     int
	Message  string
}

// FromBuildEvents re-tags parsed compiler diagnostics as findings. Errors
// become critical compilerError findings, warnings become compilerWarning.
func FromBuildEvents(events []logparse.BuildEvent) []Finding {
	var findings []Finding
	for _, ev := range events {
		switch ev.Kind {
		case logparse.KindError:
			findings = append(findings, Finding{
				Severity: SeverityCritical,
				Category: CategoryCompilerError,
				File:     ev.File,
				Line:     ev.Line,
				Message:  ev.Message,
			})
		case logparse.KindWarning:
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Category: CategoryCompilerWarning,
				File:     ev.File,
				Line:     ev.Line,
				Message:  ev.Message,
			})
		}
	}
	return findings
}

// Merge concatenates findings from independent phases. The phases inspect
// disjoint concerns, so no cross-phase dedup is performed.
func Merge(phases ...[]Finding) []Finding {
	var merged []Finding
	for _, phase := range phases {
		merged = append(merged, phase...)
	}
	return merged
}
