// Package errors provides structured error types for the tracelog library.
//
// Errors are categorized by Phase (where in the registration or write
// pipeline the error occurred) and Kind (error category). The Error type
// includes rich context: provider and event names, field name, and cause
// chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePlan, errors.KindSizeOverflow).
//		Provider("MyComponent").
//		Event("RequestDone").
//		Field("payload").
//		Detail("running record size wrapped").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SizeOverflow("payload")
//	err := errors.Backpressure(eventID, size)
//
// All errors implement the standard error interface and support
// errors.Is/As. Two errors match under Is when their Phase and Kind
// agree, so callers can classify failures without string inspection.
package errors
