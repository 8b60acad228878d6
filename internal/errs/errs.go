// Package errs defines the error taxonomy shared across the simulation:
// programmer misuse, state conflicts, constraint violations, callback
// failures, and numerical-drift detections. Sentinels are matched with
// errors.Is; wrapping uses github.com/pkg/errors so call sites keep a
// stack trace without hand-rolling one.
package errs

import "github.com/pkg/errors"

// Kind classifies an error for the taxonomy's sentinels.
type Kind int

const (
	// KindProgrammer marks misuse of the API itself — calling a method on
	// a nil receiver, scheduling onto a stopped scheduler, or similar
	// contract violations that indicate a caller bug, not bad input.
	KindProgrammer Kind = iota
	// KindState marks an operation rejected because of the object's
	// current lifecycle state — e.g. rescheduling a handle whose event has
	// already fired or been canceled.
	KindState
	// KindConstraint marks a value that failed a domain invariant — a
	// negative tick, an out-of-bounds formation slot, a duration under
	// the minimum step. Distinguishes the "Strict" API (returns this
	// error) from the "Clamp" API (silently clamps into range).
	KindConstraint
	// KindCallback marks a panic or error recovered from a single event
	// handler, isolated so one bad tick doesn't propagate as a different
	// error type.
	KindCallback
	// KindNumericalDrift marks a post-hoc invariant check — e.g. total
	// momentum or tick monotonicity — that found an inconsistency the
	// normal control flow didn't catch.
	KindNumericalDrift
)

func (k Kind) String() string {
	switch k {
	case KindProgrammer:
		return "programmer_error"
	case KindState:
		return "state_error"
	case KindConstraint:
		return "constraint_violation"
	case KindCallback:
		return "callback_failure"
	case KindNumericalDrift:
		return "numerical_drift"
	default:
		return "unknown"
	}
}

// TaxonomyError carries a Kind alongside the wrapped cause so callers can
// branch with errors.Is(err, errs.ErrState) etc. without string matching.
type TaxonomyError struct {
	Kind Kind
	msg  string
}

func (e *TaxonomyError) Error() string { return e.msg }

// Is implements errors.Is matching against the Kind sentinels below.
func (e *TaxonomyError) Is(target error) bool {
	t, ok := target.(*TaxonomyError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for errors.Is comparisons; New/Wrap produce errors that
// compare equal to the matching sentinel via TaxonomyError.Is.
var (
	ErrProgrammer     = &TaxonomyError{Kind: KindProgrammer, msg: "programmer error"}
	ErrState          = &TaxonomyError{Kind: KindState, msg: "state error"}
	ErrConstraint     = &TaxonomyError{Kind: KindConstraint, msg: "constraint violation"}
	ErrCallback       = &TaxonomyError{Kind: KindCallback, msg: "callback failure"}
	ErrNumericalDrift = &TaxonomyError{Kind: KindNumericalDrift, msg: "numerical drift detected"}
)

// New creates a taxonomy error of the given kind with a formatted message.
func New(kind Kind, msg string) error {
	return &TaxonomyError{Kind: kind, msg: msg}
}

// Wrap attaches kind and a stack trace (via pkg/errors) to cause, or
// returns nil if cause is nil.
func Wrap(cause error, kind Kind, msg string) error {
	if cause == nil {
		return nil
	}
	wrapped := errors.Wrap(cause, msg)
	return &wrappedTaxonomyError{TaxonomyError: TaxonomyError{Kind: kind, msg: wrapped.Error()}, cause: wrapped}
}

type wrappedTaxonomyError struct {
	TaxonomyError
	cause error
}

func (e *wrappedTaxonomyError) Unwrap() error { return e.cause }

// StackTrace exposes the pkg/errors stack trace for the wrapped cause, or
// nil if err wasn't produced by Wrap.
func StackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	var st stackTracer
	for {
		if s, ok := err.(stackTracer); ok {
			st = s
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
		if err == nil {
			break
		}
	}
	if st == nil {
		return nil
	}
	return st.StackTrace()
}
