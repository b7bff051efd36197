package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestWriter(color bool) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	return NewWithWriters(&out, &errBuf, color), &out, &errBuf
}

func TestPrintln(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.Println("hello %s", "world")
	if got := out.String(); got != "hello world\n" {
		t.Errorf("Println output = %q, want %q", got, "hello world\n")
	}
}

func TestErrorln(t *testing.T) {
	w, out, errBuf := newTestWriter(false)
	w.Errorln("boom")
	if out.Len() != 0 {
		t.Errorf("Errorln wrote to stdout: %q", out.String())
	}
	if got := errBuf.String(); got != "boom\n" {
		t.Errorf("Errorln output = %q, want %q", got, "boom\n")
	}
}

func TestInfoRespectsQuiet(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.SetQuiet(true)
	w.Info("should not appear")
	if out.Len() != 0 {
		t.Errorf("Info in quiet mode wrote output: %q", out.String())
	}

	w.SetQuiet(false)
	w.Info("visible")
	if !strings.Contains(out.String(), "visible") {
		t.Errorf("Info output missing message: %q", out.String())
	}
}

func TestOperationStart(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.OperationStart("build", "MyApp (Debug)")
	if !strings.Contains(out.String(), "─── build: MyApp (Debug) ───") {
		t.Errorf("OperationStart output = %q", out.String())
	}
}

func TestOperationFailed(t *testing.T) {
	w, out, errBuf := newTestWriter(false)
	w.OperationFailed("test", errors.New("exit status 65"))
	if out.Len() != 0 {
		t.Errorf("OperationFailed wrote to stdout: %q", out.String())
	}
	if got := errBuf.String(); got != "[test] failed: exit status 65\n" {
		t.Errorf("OperationFailed output = %q", got)
	}
}

func TestProgressQuiet(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.SetQuiet(true)
	w.Progress("CompileSwift normal arm64")
	if out.Len() != 0 {
		t.Errorf("Progress in quiet mode wrote output: %q", out.String())
	}
}

func TestWarningGoesToStderr(t *testing.T) {
	w, out, errBuf := newTestWriter(false)
	w.Warning("low disk")
	if out.Len() != 0 {
		t.Errorf("Warning wrote to stdout: %q", out.String())
	}
	if got := errBuf.String(); got != "warning: low disk\n" {
		t.Errorf("Warning output = %q", got)
	}
}

func TestTable(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.Table(
		[]string{"NAME", "UDID"},
		[][]string{
			{"iPhone 15", "AAAA-BBBB"},
			{"iPhone 15 Pro Max", "CCCC-DDDD"},
		},
	)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table produced %d lines, want 4: %q", len(lines), out.String())
	}
	// Columns are padded to the widest cell
	if !strings.HasPrefix(lines[0], "NAME               ") {
		t.Errorf("header not padded: %q", lines[0])
	}
	if !strings.Contains(lines[3], "CCCC-DDDD") {
		t.Errorf("row missing value: %q", lines[3])
	}
}

func TestSummaryHelpers(t *testing.T) {
	w, out, _ := newTestWriter(false)
	w.SummaryHeader("Test Summary")
	w.SummaryPassed("Passed", "12")
	w.SummaryFailed("Failed", "1")
	w.SummaryItem("Total", "13")
	w.FinalFailure("1 of 13 tests failed.")

	got := out.String()
	for _, want := range []string{"=== Test Summary ===", "Passed: 12", "Failed: 1", "Total: 13", "1 of 13 tests failed."} {
		if !strings.Contains(got, want) {
			t.Errorf("summary output missing %q in %q", want, got)
		}
	}
}

func TestColorPlaceholders(t *testing.T) {
	w, _, _ := newTestWriter(true)
	got := w.colorPlaceholders("xcpipe build <scheme>")
	if !strings.Contains(got, colorPlaceholder+"<scheme>"+reset) {
		t.Errorf("placeholder not colored: %q", got)
	}
}

func TestErrorPrefix(t *testing.T) {
	w, _, errBuf := newTestWriter(false)
	w.ErrorPrefix("no project found")
	if got := errBuf.String(); got != "xcpipe: no project found\n" {
		t.Errorf("ErrorPrefix output = %q", got)
	}
}
