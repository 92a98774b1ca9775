// Package errs implements the error taxonomy shared across the core: a small set of
// typed fatal errors the orchestrator aborts on, and a parallel Warning
// value type for non-fatal conditions that accumulate and flow through
// every downstream engine untouched.
package errs

import "fmt"

// Kind is one entry of the error taxonomy.
type Kind string

const (
	// SchemaMismatch: required column/entity absent. Fatal.
	SchemaMismatch Kind = "SchemaMismatch"
	// InvalidConfig: out-of-range or inconsistent options. Fatal.
	InvalidConfig Kind = "InvalidConfig"
	// InsufficientData: no record survives filters (stability), or
	// below min_sample_size (feature weight, degrades to warning), or
	// a mold could not be placed (optimizers, non-fatal).
	InsufficientData Kind = "InsufficientData"
	// InconsistentReference: mold/machine referenced by a record but
	// absent from master data; record dropped, counted in InvalidItemsReport.
	InconsistentReference Kind = "InconsistentReference"
	// OptimizationInfeasible: neither tier could place a mold. Reported, not raised.
	OptimizationInfeasible Kind = "OptimizationInfeasible"
	// NumericEdgeCase: division-by-zero, negative variance, empty CI;
	// locally recovered with the neutral value documented at each site.
	NumericEdgeCase Kind = "NumericEdgeCase"
)

// Fatal reports whether errors of this kind abort the invocation
// immediately, versus accumulating as a Warning instead.
func (k Kind) Fatal() bool {
	switch k {
	case SchemaMismatch, InvalidConfig:
		return true
	default:
		return false
	}
}

// CoreError is the fatal-error envelope every engine/orchestrator stage
// returns. Stage names the owning component so the caller can attribute
// the failure.
type CoreError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *CoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *CoreError) Unwrap() error { return e.Err }

// New wraps err (or, if err is nil, just the kind) as a CoreError.
func New(kind Kind, stage string, err error) *CoreError {
	return &CoreError{Kind: kind, Stage: stage, Err: err}
}

// Warning is a non-fatal finding recorded by an engine and carried
// forward through every downstream stage without being raised as a Go
// error.
type Warning struct {
	Kind    Kind
	Stage   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s/%s] %s", w.Stage, w.Kind, w.Message)
}

// Warnf constructs a Warning with a formatted message.
func Warnf(kind Kind, stage, format string, args ...any) Warning {
	return Warning{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}
