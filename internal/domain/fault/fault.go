package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a fault into the taxonomy the command surface exposes.
// Every caller-visible failure carries a stable code and a readable message;
// nothing escapes this package as a bare unstructured error.
type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindStateTransition Kind = "state_transition_error"
	KindConflict        Kind = "conflict_error"
	KindNotFound        Kind = "not_found"
	KindImmutableField  Kind = "immutable_field_error"
	KindAdapterSync     Kind = "adapter_sync_error"
	KindInvocation      Kind = "invocation_error"
	KindInternal        Kind = "internal_error"
)

type Fault struct {
	kind    Kind
	code    string
	message string
	cause   error
}

func New(kind Kind, code, message string, cause error) *Fault {
	return &Fault{kind: kind, code: code, message: message, cause: cause}
}

func (e *Fault) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Fault) Kind() Kind { return e.kind }

func (e *Fault) Code() string { return e.code }

func (e *Fault) Message() string { return e.message }

func (e *Fault) Unwrap() error { return e.cause }

// Is lets errors.Is match two faults by kind and code.
func (e *Fault) Is(target error) bool {
	var other *Fault
	if !errors.As(target, &other) {
		return false
	}
	return e.kind == other.kind && (other.code == "" || e.code == other.code)
}

// Validation reports a bad definition or field value. Never retried.
func Validation(field, message string) *Fault {
	return New(KindValidation, "invalid_"+field, fmt.Sprintf("field %q: %s", field, message), nil)
}

// InvalidTransition reports a state change outside the transition table.
func InvalidTransition(from, to string) *Fault {
	return New(KindStateTransition, "invalid_transition",
		fmt.Sprintf("cannot transition schedule from %s to %s", from, to), nil)
}

// Conflict reports a redundant or currently-impossible state change.
func Conflict(code, message string) *Fault {
	return New(KindConflict, code, message, nil)
}

// NotFound reports an unknown entity.
func NotFound(entity string, id uint64) *Fault {
	return New(KindNotFound, entity+"_not_found", fmt.Sprintf("%s %d not found", entity, id), nil)
}

// Immutable reports an attempt to change a post-creation immutable field.
func Immutable(field string) *Fault {
	return New(KindImmutableField, "immutable_field", fmt.Sprintf("field %q cannot be changed after creation", field), nil)
}

// AdapterSync reports a provider call that failed around a persistence write.
// The message keeps enough detail for manual reconciliation.
func AdapterSync(op string, scheduleID uint64, cause error) *Fault {
	return New(KindAdapterSync, "adapter_sync_failed",
		fmt.Sprintf("provider %s failed for schedule %d", op, scheduleID), cause)
}

// Invocation reports an invoker failure during dispatch.
func Invocation(code, message string, cause error) *Fault {
	return New(KindInvocation, code, message, cause)
}

func Internal(message string, cause error) *Fault {
	return New(KindInternal, "internal_error", message, cause)
}

// IsKind reports whether err is (or wraps) a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.kind == kind
}
