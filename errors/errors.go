package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Phase indicates where in a boundary crossing the violation occurred
type Phase string

const (
	PhaseBorrow       Phase = "borrow"       // reading caller-owned memory
	PhaseTransfer     Phase = "transfer"     // ownership moving across
	PhaseHandle       Phase = "handle"       // opaque handle lookup
	PhaseCollaborator Phase = "collaborator" // calling the other side
	PhaseLink         Phase = "link"         // host module registration
	PhaseConfig       Phase = "config"       // configuration parsing
)

// Kind categorizes the violation
type Kind string

const (
	KindNilPointer        Kind = "nil_pointer"
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindDoubleRelease     Kind = "double_release"
	KindUnknownAllocation Kind = "unknown_allocation"
	KindInvalidHandle     Kind = "invalid_handle"
	KindMissingExport     Kind = "missing_export"
	KindAllocation        Kind = "allocation"
	KindInvalidInput      Kind = "invalid_input"
	KindTrap              Kind = "trap"
)

// Error is the structured error type used throughout the boundary
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the failing operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Violate panics with err. It never returns.
func Violate(err *Error) {
	panic(err)
}

// NilPointer creates a null pointer violation for the named argument
func NilPointer(phase Phase, op, arg string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Op:     op,
		Detail: arg + " pointer is null",
	}
}

// InvalidUTF8 creates an invalid UTF-8 error, previewing the first bad bytes
func InvalidUTF8(op string, s string) *Error {
	at := 0
	for at < len(s) {
		r, size := utf8.DecodeRuneInString(s[at:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		at += size
	}
	preview := s[at:]
	if len(preview) > 8 {
		preview = preview[:8]
	}
	return &Error{
		Phase:  PhaseBorrow,
		Kind:   KindInvalidUTF8,
		Op:     op,
		Detail: fmt.Sprintf("invalid UTF-8 sequence at byte %d: %x", at, preview),
		Value:  at,
	}
}

// OutOfBounds creates an error for a region outside the caller's memory
func OutOfBounds(op string, offset, length uint64) *Error {
	return &Error{
		Phase:  PhaseBorrow,
		Kind:   KindOutOfBounds,
		Op:     op,
		Detail: fmt.Sprintf("region offset=%d length=%d out of bounds", offset, length),
		Value:  offset,
	}
}

// DoubleRelease creates an error for an allocation released more than once
func DoubleRelease(op string, key any) *Error {
	return &Error{
		Phase:  PhaseTransfer,
		Kind:   KindDoubleRelease,
		Op:     op,
		Detail: fmt.Sprintf("allocation %v already released", key),
		Value:  key,
	}
}

// UnknownAllocation creates an error for a pointer this side never produced
func UnknownAllocation(op string, key any) *Error {
	return &Error{
		Phase:  PhaseTransfer,
		Kind:   KindUnknownAllocation,
		Op:     op,
		Detail: fmt.Sprintf("allocation %v was not produced here", key),
		Value:  key,
	}
}

// InvalidHandle creates an error for a destroyed or foreign handle
func InvalidHandle(op string, handle any) *Error {
	return &Error{
		Phase:  PhaseHandle,
		Kind:   KindInvalidHandle,
		Op:     op,
		Detail: fmt.Sprintf("handle %v is not live", handle),
		Value:  handle,
	}
}

// MissingExport creates an error for a collaborator the other side does not provide
func MissingExport(op, name string) *Error {
	return &Error{
		Phase:  PhaseCollaborator,
		Kind:   KindMissingExport,
		Op:     op,
		Detail: fmt.Sprintf("collaborator %q is not exported", name),
		Value:  name,
	}
}

// CollaboratorFailed creates an error for a collaborator call that did not return
func CollaboratorFailed(op, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseCollaborator,
		Kind:   KindTrap,
		Op:     op,
		Detail: fmt.Sprintf("collaborator %q failed", name),
		Value:  name,
		Cause:  cause,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(op string, size, align uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseTransfer,
		Kind:   KindAllocation,
		Op:     op,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// InvalidInput creates a configuration error
func InvalidInput(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
