package sweep

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// linePrefix starts every run log line.
const linePrefix = " - "

// RunLog accumulates the human-readable progress lines of a single run.
// Every line is echoed to the output writer as it is recorded.
type RunLog struct {
	out   io.Writer
	lines []string
}

// NewRunLog creates a RunLog that echoes to out. A nil out discards the echo.
func NewRunLog(out io.Writer) *RunLog {
	if out == nil {
		out = io.Discard
	}
	return &RunLog{out: out}
}

// Log formats msg with the run log prefix, writes it to the output and
// appends it to the log.
func (l *RunLog) Log(msg string) {
	line := linePrefix + msg + "\n"
	fmt.Fprint(l.out, line)
	l.lines = append(l.lines, line)
	slog.Debug(msg)
}

// Logf is Log with fmt.Sprintf formatting.
func (l *RunLog) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded lines in order.
func (l *RunLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// String joins all recorded lines.
func (l *RunLog) String() string {
	return strings.Join(l.lines, "")
}
