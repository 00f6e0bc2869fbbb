// Package conflict collects data-quality diagnostics produced while
// reconciling the transfer-rule feed. The log is a side channel: nothing
// reads it back for control flow.
package conflict

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Log is an append-only sink of human-readable diagnostic lines.
type Log struct {
	w         *bufio.Writer
	closer    io.Closer
	anomalies int
	notices   int
}

// New creates a conflict log writing to path, truncating any previous file.
func New(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating conflict log: %w", err)
	}
	return &Log{w: bufio.NewWriter(f), closer: f}, nil
}

// NewWriter creates a conflict log writing to an arbitrary writer.
// Used by tests and for discarding diagnostics.
func NewWriter(w io.Writer) *Log {
	return &Log{w: bufio.NewWriter(w)}
}

// Report records an anomaly: a rejected record, a discarded rule, or a
// flagged value. Anomalies count toward the run summary.
func (l *Log) Report(format string, args ...any) {
	l.anomalies++
	fmt.Fprintf(l.w, format+"\n", args...)
}

// Info records an informational notice, such as a routine ignore-list
// drop. Notices do not count as anomalies.
func (l *Log) Info(format string, args ...any) {
	l.notices++
	fmt.Fprintf(l.w, format+"\n", args...)
}

// Anomalies returns the number of anomaly lines written so far.
func (l *Log) Anomalies() int {
	return l.anomalies
}

// Notices returns the number of informational lines written so far.
func (l *Log) Notices() int {
	return l.notices
}

// Flush writes any buffered lines through to the underlying writer.
func (l *Log) Flush() error {
	return l.w.Flush()
}

// Close flushes buffered lines and closes the underlying file, if any.
func (l *Log) Close() error {
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("flushing conflict log: %w", err)
	}
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
