package conflict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportCountsAnomalies(t *testing.T) {
	var sb strings.Builder
	l := NewWriter(&sb)
	l.Report("Unknown institution: %s. Record skipped.", "XYZ01")
	l.Report("Source course lookup failed for %06d.", 9999)
	l.Info("Ignored institution: %s.", "00000")

	if l.Anomalies() != 2 {
		t.Errorf("expected 2 anomalies, got %d", l.Anomalies())
	}
	if l.Notices() != 1 {
		t.Errorf("expected 1 notice, got %d", l.Notices())
	}
	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "Unknown institution: XYZ01. Record skipped.") {
		t.Errorf("missing anomaly line in output: %q", out)
	}
	if !strings.Contains(out, "009999") {
		t.Errorf("expected zero-padded course id in output: %q", out)
	}
}

func TestFileLogFlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflicts.log")
	l, err := New(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Report("Inactive destination course_id (%06d) in rule %s. Rule retained.", 1234, "QCC01-LEH01-MATH-1")
	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "Rule retained.") {
		t.Errorf("log file missing line: %q", string(data))
	}
}
