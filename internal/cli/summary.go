package cli

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xcpipe/xcpipe/internal/diagnostics"
	"github.com/xcpipe/xcpipe/internal/logparse"
	"github.com/xcpipe/xcpipe/internal/orchestrator"
	"github.com/xcpipe/xcpipe/internal/output"
)

// statusCaser renders lowercase status words as display labels
// ("failed" -> "Failed").
var statusCaser = cases.Title(language.English)

// printBuildSummary prints the aggregated outcome of a build operation.
func printBuildSummary(w *output.Writer, res *orchestrator.BuildResult) {
	w.SummaryHeader("Build Summary")

	w.SummaryItem("Status", statusCaser.String(res.Status.String()))
	w.SummaryItem("Duration", fmt.Sprintf("%.1fs", res.DurationSeconds))
	if len(res.Errors) > 0 {
		w.SummaryFailed("Errors", fmt.Sprintf("%d", len(res.Errors)))
	}
	if len(res.Warnings) > 0 {
		w.SummaryItem("Warnings", fmt.Sprintf("%d", len(res.Warnings)))
	}

	if len(res.Errors) > 0 {
		w.Println("")
		w.SummarySectionLabel("Errors:")
		for _, e := range res.Errors {
			w.SummaryFailed("  "+diagnosticLocation(e), e.Message)
		}
	}

	w.Println("")
	if res.Succeeded {
		w.FinalSuccess("Build succeeded.")
	} else {
		w.FinalFailure("Build %s.", res.Status)
	}
}

// printTestRunSummary prints the aggregated outcome of a test operation.
func printTestRunSummary(w *output.Writer, res *orchestrator.TestRunResult) {
	w.SummaryHeader("Test Summary")

	w.SummaryPassed("Passed", fmt.Sprintf("%d", res.Passed))
	if res.Failed > 0 {
		w.SummaryFailed("Failed", fmt.Sprintf("%d", res.Failed))
	}
	if res.Skipped > 0 {
		w.SummaryItem("Skipped", fmt.Sprintf("%d", res.Skipped))
	}
	w.SummaryItem("Total", fmt.Sprintf("%d", res.Total))
	w.SummaryItem("Duration", fmt.Sprintf("%.3fs", res.TotalDurationSeconds))
	if res.Status != orchestrator.StatusCompleted && res.Status != orchestrator.StatusFailed {
		// Timed out or cancelled: the counts above are partial.
		w.SummaryItem("Status", statusCaser.String(res.Status.String())+" (partial results)")
	}

	if res.Failed > 0 {
		w.Println("")
		w.SummarySectionLabel("Failed Tests:")
		for _, c := range res.Cases {
			if c.Status != logparse.StatusFailed {
				continue
			}
			name := c.Case
			if c.Suite != "" {
				name = c.Suite + "." + c.Case
			}
			w.SummaryFailed("  "+name, c.FailureMessage)
		}
	}

	for _, note := range res.Notes {
		w.SummaryFailed("  note", note)
	}

	w.Println("")
	if res.Succeeded {
		w.FinalSuccess("All %d tests passed.", res.Total)
	} else if res.Failed > 0 {
		w.FinalFailure("%d of %d tests failed.", res.Failed, res.Total)
	} else {
		w.FinalFailure("Test run %s.", res.Status)
	}
}

// printFindings prints the merged diagnostics report grouped by severity.
func printFindings(w *output.Writer, findings []diagnostics.Finding, scan *diagnostics.ScanSummary) {
	w.SummaryHeader("Diagnostics Summary")

	bySeverity := map[diagnostics.Severity]int{}
	for _, f := range findings {
		bySeverity[f.Severity]++
	}

	w.SummaryItem("Files scanned", fmt.Sprintf("%d", scan.FilesScanned))
	if n := bySeverity[diagnostics.SeverityCritical]; n > 0 {
		w.SummaryFailed(statusCaser.String(string(diagnostics.SeverityCritical)), fmt.Sprintf("%d", n))
	}
	if n := bySeverity[diagnostics.SeverityWarning]; n > 0 {
		w.SummaryItem(statusCaser.String(string(diagnostics.SeverityWarning)), fmt.Sprintf("%d", n))
	}
	if n := bySeverity[diagnostics.SeverityInfo]; n > 0 {
		w.SummaryItem(statusCaser.String(string(diagnostics.SeverityInfo)), fmt.Sprintf("%d", n))
	}
	if len(scan.SkippedFiles) > 0 {
		w.SummaryItem("Skipped files", fmt.Sprintf("%d", len(scan.SkippedFiles)))
	}

	if len(findings) > 0 {
		w.Println("")
		w.SummarySectionLabel("Findings:")
		for _, f := range findings {
			w.Println("  [%s] %s %s: %s", f.Severity, f.Category, findingLocation(f), f.Message)
		}
	}

	w.Println("")
	if bySeverity[diagnostics.SeverityCritical] > 0 {
		w.FinalFailure("%d critical finding(s).", bySeverity[diagnostics.SeverityCritical])
	} else if len(findings) > 0 {
		w.FinalSuccess("No critical findings (%d total).", len(findings))
	} else {
		w.FinalSuccess("No findings.")
	}
}

func diagnosticLocation(e logparse.BuildEvent) string {
	if e.File == "" {
		return "(general)"
	}
	return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
}

func findingLocation(f diagnostics.Finding) string {
	if f.File == "" {
		return "(general)"
	}
	if f.Line == 0 {
		return f.File
	}
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}
