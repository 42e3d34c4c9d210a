// Package diag provides the diagnostic sink the smfkit core reports
// through. The core never decides whether a condition is fatal to the
// caller's purposes; it just tags a message with a severity and lets the
// sink (or the absence of one) decide what happens to it.
package diag

import (
	"fmt"
	"log/slog"
)

// Severity is one of the four levels the core ever reports at.
type Severity int

const (
	// Note is purely informational.
	Note Severity = iota
	// Warn marks a non-fatal format oddity (e.g. an oversized header).
	Warn
	// Error marks a recoverable SMF violation; the caller decides what to
	// do about it.
	Error
	// Fatal marks an unrecoverable condition (out of memory, an internal
	// invariant broken). The core still returns an error to its caller;
	// Fatal only affects how the message is surfaced.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Sink receives severity-tagged, printf-style diagnostic messages from the
// core. A nil *Sink is valid and silently discards everything, matching
// spec's "absent a callback, diagnostics are silent".
type Sink struct {
	logger *slog.Logger
	file   string
}

// NewSink wraps logger as a diagnostic Sink. Note maps to slog's Debug
// level (SMF parsing chatter isn't interesting at Info), Warn and Error map
// directly, and Fatal also maps to slog's Error level — the core always
// returns an error value for a Fatal condition, so the sink's job is only
// to make it loud, not to terminate the process.
func NewSink(logger *slog.Logger) *Sink {
	return &Sink{logger: logger}
}

// WithFile returns a Sink reporting through the same logger, with file
// attached for ReportAt. The core itself never knows what file it's
// reading from (it only sees an io.Reader); a frontend that does know —
// cmd/smftool, for instance — attaches it before handing the sink down.
// WithFile on a nil Sink returns nil.
func (s *Sink) WithFile(file string) *Sink {
	if s == nil {
		return nil
	}
	return &Sink{logger: s.logger, file: file}
}

// Report emits a formatted message at the given severity. A nil Sink is a
// no-op.
func (s *Sink) Report(severity Severity, format string, args ...any) {
	if s == nil || s.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	switch severity {
	case Note:
		s.logger.Debug(msg, "severity", severity.String())
	case Warn:
		s.logger.Warn(msg, "severity", severity.String())
	case Error, Fatal:
		s.logger.Error(msg, "severity", severity.String())
	}
}

// ReportAt emits a message at the given severity, additionally naming the
// byte offset it occurred at and, if the sink was given one via WithFile,
// the source file — as spec's "with the sink attached, each error emits
// one line naming the file and byte offset" requires. Without a file
// attached, it falls back to just the offset.
func (s *Sink) ReportAt(severity Severity, offset int, format string, args ...any) {
	if s == nil || s.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if s.file != "" {
		s.Report(severity, "%s:%d: %s", s.file, offset, msg)
		return
	}
	s.Report(severity, "offset %d: %s", offset, msg)
}
