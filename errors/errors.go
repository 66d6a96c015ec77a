package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister  Phase = "register"  // provider registration
	PhaseName      Phase = "name"      // wire-name construction
	PhasePlan      Phase = "plan"      // size and alignment planning
	PhaseTranscode Phase = "transcode" // UTF-16/32 to UTF-8 conversion
	PhaseWrite     Phase = "write"     // reserve/write/commit
	PhaseFilter    Phase = "filter"    // filter program evaluation
)

// Kind categorizes the error
type Kind string

const (
	KindSizeOverflow      Kind = "size_overflow"
	KindBackpressure      Kind = "backpressure"
	KindBufferFull        Kind = "buffer_full"
	KindRegistration      Kind = "registration"
	KindAlreadyRegistered Kind = "already_registered"
	KindNotRegistered     Kind = "not_registered"
	KindNameTruncated     Kind = "name_truncated"
	KindInvalidField      Kind = "invalid_field"
	KindInvalidProgram    Kind = "invalid_program"
	KindAllocation        Kind = "allocation"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Provider string
	Event    string
	Field    string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Provider != "" || e.Event != "" {
		b.WriteString(" at ")
		b.WriteString(e.Provider)
		if e.Event != "" {
			b.WriteByte(':')
			b.WriteString(e.Event)
		}
	}

	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
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

// Provider sets the provider name
func (b *Builder) Provider(name string) *Builder {
	b.err.Provider = name
	return b
}

// Event sets the event name
func (b *Builder) Event(name string) *Builder {
	b.err.Event = name
	return b
}

// Field sets the field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
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

// Convenience constructors for common error patterns

// SizeOverflow reports that a record's running byte total wrapped during
// planning. Raised before any byte of the record is written.
func SizeOverflow(fieldName string) *Error {
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindSizeOverflow,
		Field:  fieldName,
		Detail: "running record size overflowed",
	}
}

// Backpressure reports that the sink could not reserve space for a
// record. The write is abandoned for that probe only.
func Backpressure(eventID uint32, size uint32) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindBackpressure,
		Detail: fmt.Sprintf("reserve of %d bytes for event %d failed", size, eventID),
	}
}

// BufferFull reports that a bounded buffer cannot accept a record of the
// requested size.
func BufferFull(size uint32, free uint32) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindBufferFull,
		Detail: fmt.Sprintf("need %d bytes, %d free", size, free),
	}
}

// Registration wraps a registrar failure during provider registration.
func Registration(provider string, cause error) *Error {
	return &Error{
		Phase:    PhaseRegister,
		Kind:     KindRegistration,
		Provider: provider,
		Cause:    cause,
	}
}

// NameTruncated reports that a wire name exceeded the symbol limit and
// was truncated. Degraded, not fatal: the truncated name is usable.
func NameTruncated(provider, event string) *Error {
	return &Error{
		Phase:    PhaseName,
		Kind:     KindNameTruncated,
		Provider: provider,
		Event:    event,
		Detail:   "provider+event name exceeds symbol length, event name truncated",
	}
}

// InvalidField reports a malformed field descriptor.
func InvalidField(fieldName, detail string) *Error {
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindInvalidField,
		Field:  fieldName,
		Detail: detail,
	}
}

// InvalidProgram wraps a filter program compilation failure.
func InvalidProgram(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseFilter,
		Kind:   KindInvalidProgram,
		Detail: fmt.Sprintf("compile filter program %q", name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
