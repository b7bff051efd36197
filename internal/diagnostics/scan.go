package diagnostics

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultLargeFileThreshold is the line count above which a source file gets
// a largeFile finding.
const DefaultLargeFileThreshold = 500

// Static regexes for the line-level source rules.
var (
	// try!, as!, or a postfix ! on an identifier/closing bracket. The
	// character after the bang excludes '=' so inequality operators never
	// match.
	forceUnwrapRegex = regexp.MustCompile(`\btry!|\bas!|[\w\)\]]!(?:[.\s,\)\]]|$)`)

	// print(...), debugPrint(...), NSLog(...) at statement position.
	debugPrintRegex = regexp.MustCompile(`^\s*(?:print|debugPrint|NSLog)\(`)
)

// excludedDirs are directories never scanned: build artifacts and vendored
// dependencies.
var excludedDirs = map[string]bool{
	".git":             true,
	".build":           true,
	".swiftpm":         true,
	"DerivedData":      true,
	"Pods":             true,
	"Carthage":         true,
	"node_modules":     true,
	"vendor":           true,
	"build":            true,
	"pipeline_reports": true,
}

// Scanner walks source files under a project root and applies line-level
// quality rules.
type Scanner struct {
	root      string
	threshold int
	exclude   map[string]bool
}

// ScanSummary is the outcome of one source scan. Findings are ordered by
// walk order; files that could not be read are listed, not fatal.
type ScanSummary struct {
	FilesScanned int
	SkippedFiles []string
	Findings     []Finding
}

// NewScanner creates a scanner for the given project root. A threshold of 0
// selects DefaultLargeFileThreshold; extraExclude adds directory names to the
// built-in exclusion set.
func NewScanner(root string, threshold int, extraExclude []string) *Scanner {
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}
	exclude := make(map[string]bool, len(excludedDirs)+len(extraExclude))
	for name := range excludedDirs {
		exclude[name] = true
	}
	for _, name := range extraExclude {
		exclude[name] = true
	}
	return &Scanner{
		root:      root,
		threshold: threshold,
		exclude:   exclude,
	}
}

// Scan walks all Swift sources under the root and applies every rule to
// every line; all applicable rules fire. The scan is read-only, and an
// unreadable or binary file is recorded as skipped rather than failing the
// whole scan.
func (s *Scanner) Scan() (*ScanSummary, error) {
	summary := &ScanSummary{}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				summary.SkippedFiles = append(summary.SkippedFiles, path)
				return filepath.SkipDir
			}
			summary.SkippedFiles = append(summary.SkippedFiles, path)
			return nil
		}
		if d.IsDir() {
			if path != s.root && s.exclude[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".swift") {
			return nil
		}
		s.scanFile(path, summary)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// scanFile applies the line rules to one file.
func (s *Scanner) scanFile(path string, summary *ScanSummary) {
	data, err := os.ReadFile(path)
	if err != nil {
		summary.SkippedFiles = append(summary.SkippedFiles, path)
		return
	}
	if bytes.IndexByte(data, 0) != -1 {
		// Binary content masquerading as a source file.
		summary.SkippedFiles = append(summary.SkippedFiles, path)
		return
	}

	summary.FilesScanned++
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		if forceUnwrapRegex.MatchString(line) {
			summary.Findings = append(summary.Findings, Finding{
				Severity: SeverityWarning,
				Category: CategoryForceUnwrap,
				File:     path,
				Line:     i + 1,
				Message:  "forced unwrap or forced cast",
			})
		}
		if debugPrintRegex.MatchString(line) {
			summary.Findings = append(summary.Findings, Finding{
				Severity: SeverityInfo,
				Category: CategoryDebugPrint,
				File:     path,
				Line:     i + 1,
				Message:  "debug print statement",
			})
		}
	}

	// One whole-file finding per file, never per line. A file of exactly
	// the threshold line count is fine; threshold+1 is not.
	if lineCount := countLines(data); lineCount > s.threshold {
		summary.Findings = append(summary.Findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryLargeFile,
			File:     path,
			Message:  fmt.Sprintf("file has %d lines (threshold %d)", lineCount, s.threshold),
		})
	}
}

// countLines counts newline-terminated lines plus a trailing unterminated one.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
