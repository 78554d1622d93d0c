package evaluator

import "fmt"

// Kind is the error taxonomy from spec §7. It names a category of failure,
// not a Go type — every ThunkError carries exactly one Kind.
type Kind string

const (
	// HandlerRegistryKind: no handler registered for a node, or an attempt
	// to register a duplicate.
	HandlerRegistryKind Kind = "HANDLER_REGISTRY"
	// LookupFailedKind: a reference resolved to a missing pseudo node or
	// path.
	LookupFailedKind Kind = "LOOKUP_FAILED"
	// TypeMismatchKind: a value's shape is incompatible with a strict
	// handler (e.g. invokeSync called on an async-only handler).
	TypeMismatchKind Kind = "TYPE_MISMATCH"
	// EvaluationFailedKind: a handler threw, including the maxRetriesExceeded
	// and wrapped-effect-failure sub-kinds.
	EvaluationFailedKind Kind = "EVALUATION_FAILED"
	// SecurityKind is currently reserved (e.g. disallowed namespace
	// access).
	SecurityKind Kind = "SECURITY"
	// UnknownKind is the fallback for anything not otherwise classified.
	UnknownKind Kind = "UNKNOWN"
)

// SubKind names a specific failure shape within EvaluationFailedKind.
type SubKind string

const (
	MaxRetriesExceeded SubKind = "maxRetriesExceeded"
	EffectFailure      SubKind = "effectFailure"
)

// ThunkError is the error half of a ThunkResult. It is a first-class,
// cacheable value (spec §7: "the error is cached so a failing
// sub-expression is not re-evaluated repeatedly").
type ThunkError struct {
	Kind    Kind
	Sub     SubKind
	Message string
	Cause   error
}

func (e *ThunkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ThunkError) Unwrap() error { return e.Cause }

// NewThunkError builds a ThunkError with no sub-kind.
func NewThunkError(kind Kind, message string, cause error) *ThunkError {
	return &ThunkError{Kind: kind, Message: message, Cause: cause}
}

// NewThunkErrorWithSub builds a ThunkError carrying a sub-kind.
func NewThunkErrorWithSub(kind Kind, sub SubKind, message string, cause error) *ThunkError {
	return &ThunkError{Kind: kind, Sub: sub, Message: message, Cause: cause}
}
