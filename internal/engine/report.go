package engine

import (
	"log/slog"
)

// FatalReporter receives invariant violations before they surface to
// callers.
//
// ReportFatal is not expected to return normally in fail-fast deployments
// (see PanicReporter). If it does return, the engine still fails the assembly
// with the same *InvariantError; it never continues with partial data.
type FatalReporter interface {
	ReportFatal(err error)
}

// ReporterFunc adapts a function to FatalReporter.
type ReporterFunc func(err error)

// ReportFatal calls f(err).
func (f ReporterFunc) ReportFatal(err error) {
	f(err)
}

// LogReporter logs invariant violations at error level. This is the default.
type LogReporter struct {
	Logger *slog.Logger
}

// ReportFatal logs err with its structured fields.
func (r LogReporter) ReportFatal(err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"error", err}
	if ie, ok := err.(*InvariantError); ok {
		attrs = append(attrs,
			"code", string(ie.Code),
			"snapshot", ie.SnapshotID,
			"scope", ie.Scope,
		)
		if ie.Entity != "" {
			attrs = append(attrs, "entity", ie.Entity)
		}
	}
	logger.Error("checksum invariant violated", attrs...)
}

// PanicReporter panics with the reported error.
//
// Inside a memoized computation the panic is recovered by package flight and
// delivered to every waiter as a *flight.PanicError that unwraps to the
// *InvariantError. Direct Assemble calls propagate the panic.
type PanicReporter struct{}

// ReportFatal panics with err.
func (PanicReporter) ReportFatal(err error) {
	panic(err)
}
