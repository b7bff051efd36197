package diagnostics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func findingsByCategory(findings []Finding, cat Category) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}

func TestScan_ForceUnwrapRule(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "App.swift", strings.Join([]string{
		"let user = store.user!",
		"let name = try! decode(data)",
		"let view = v as! UIView",
		"if a != b { return }", // inequality, not a force unwrap
		"let ok = maybe ?? fallback",
	}, "\n"))

	summary, err := NewScanner(dir, 0, nil).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	unwraps := findingsByCategory(summary.Findings, CategoryForceUnwrap)
	if len(unwraps) != 3 {
		t.Fatalf("got %d forceUnwrap findings, want 3: %+v", len(unwraps), unwraps)
	}
	for _, f := range unwraps {
		if f.Severity != SeverityWarning {
			t.Errorf("forceUnwrap severity = %q, want warning", f.Severity)
		}
	}
	if unwraps[0].Line != 1 || unwraps[1].Line != 2 || unwraps[2].Line != 3 {
		t.Errorf("finding lines = %d, %d, %d", unwraps[0].Line, unwraps[1].Line, unwraps[2].Line)
	}
}

func TestScan_DebugPrintRule(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "Log.swift", strings.Join([]string{
		`print("reached here")`,
		`    debugPrint(model)`,
		`NSLog("legacy")`,
		`let printable = true`, // not a call at statement position
	}, "\n"))

	summary, err := NewScanner(dir, 0, nil).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	prints := findingsByCategory(summary.Findings, CategoryDebugPrint)
	if len(prints) != 3 {
		t.Fatalf("got %d debugPrint findings, want 3: %+v", len(prints), prints)
	}
	for _, f := range prints {
		if f.Severity != SeverityInfo {
			t.Errorf("debugPrint severity = %q, want info", f.Severity)
		}
	}
}

func TestScan_LargeFileThresholdBoundary(t *testing.T) {
	t.Parallel()

	const threshold = 10
	atLimit := strings.Repeat("let a = 1\n", threshold)
	overLimit := strings.Repeat("let a = 1\n", threshold+1)

	t.Run("exactly threshold produces no finding", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "AtLimit.swift", atLimit)

		summary, err := NewScanner(dir, threshold, nil).Scan()
		if err != nil {
			t.Fatalf("Scan() error: %v", err)
		}
		if got := findingsByCategory(summary.Findings, CategoryLargeFile); len(got) != 0 {
			t.Errorf("got %d largeFile findings at threshold, want 0", len(got))
		}
	})

	t.Run("threshold plus one produces exactly one finding", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "OverLimit.swift", overLimit)

		summary, err := NewScanner(dir, threshold, nil).Scan()
		if err != nil {
			t.Fatalf("Scan() error: %v", err)
		}
		got := findingsByCategory(summary.Findings, CategoryLargeFile)
		if len(got) != 1 {
			t.Fatalf("got %d largeFile findings over threshold, want 1", len(got))
		}
		if got[0].Line != 0 {
			t.Errorf("largeFile finding has a line number (%d); it is whole-file", got[0].Line)
		}
	})
}

func TestScan_ExcludesBuildDirectories(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "Sources/App.swift", "let a = b!\n")
	writeFile(t, dir, "Pods/Dep.swift", "let a = b!\n")
	writeFile(t, dir, "DerivedData/Gen.swift", "let a = b!\n")
	writeFile(t, dir, ".build/Out.swift", "let a = b!\n")

	summary, err := NewScanner(dir, 0, nil).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if summary.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", summary.FilesScanned)
	}
	for _, f := range summary.Findings {
		if strings.Contains(f.File, "Pods") || strings.Contains(f.File, "DerivedData") || strings.Contains(f.File, ".build") {
			t.Errorf("finding from excluded directory: %q", f.File)
		}
	}
}

func TestScan_ExtraExcludes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "Generated/Gen.swift", "print(1)\n")
	writeFile(t, dir, "App.swift", "print(1)\n")

	summary, err := NewScanner(dir, 0, []string{"Generated"}).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if summary.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", summary.FilesScanned)
	}
}

func TestScan_BinaryFileSkipped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "Real.swift", "let ok = true\n")
	if err := os.WriteFile(filepath.Join(dir, "Fake.swift"), []byte{0x00, 0x01, 0x02, 'a'}, 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := NewScanner(dir, 0, nil).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if summary.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", summary.FilesScanned)
	}
	if len(summary.SkippedFiles) != 1 || !strings.HasSuffix(summary.SkippedFiles[0], "Fake.swift") {
		t.Errorf("SkippedFiles = %v, want Fake.swift", summary.SkippedFiles)
	}
}

func TestScan_NonSwiftFilesIgnored(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "print( in a readme\n")
	writeFile(t, dir, "script.sh", "print(oops)\n")

	summary, err := NewScanner(dir, 0, nil).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if summary.FilesScanned != 0 || len(summary.Findings) != 0 {
		t.Errorf("scanned %d files with %d findings, want 0/0", summary.FilesScanned, len(summary.Findings))
	}
}

func TestScan_AllRulesFirePerLine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// One line can trigger both the force-unwrap and debug-print rules.
	writeFile(t, dir, "Both.swift", "print(user!.name)\n")

	summary, err := NewScanner(dir, 0, nil).Scan()
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(findingsByCategory(summary.Findings, CategoryForceUnwrap)) != 1 {
		t.Error("forceUnwrap rule did not fire")
	}
	if len(findingsByCategory(summary.Findings, CategoryDebugPrint)) != 1 {
		t.Error("debugPrint rule did not fire")
	}
}
