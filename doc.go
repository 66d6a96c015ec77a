// Package tracelog provides the event-encoding and transmission core of a
// structured tracing provider.
//
// Application code names an event and supplies a sequence of typed fields;
// the core computes the event's exact wire layout (size, alignment,
// transcoding), cheaply checks whether the event is currently enabled, and
// only then reserves space in an append-only trace buffer, writes the
// encoded bytes in field order, and commits the record.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	tracelog/            Root package with the Sink, Registrar and probe
//	                     contracts consumed by the core
//	├── provider/        Provider registration state machine and event
//	                     wire-name construction
//	├── writer/          The write path: enablement check, filtering,
//	                     planning, reserve/write/commit
//	├── field/           Typed field descriptors and their registration
//	                     metadata
//	├── layout/          Size and alignment planning over a field list
//	├── transcode/       UTF-16/UTF-32 to UTF-8 transcoding and the
//	                     bounded scratch buffer
//	├── filter/          Scalar flattening and the wazero-backed filter
//	                     program engine
//	├── activity/        16-byte correlation IDs with context propagation
//	├── errors/          Structured error types for debugging
//	└── sink/memory/     In-memory session/channel sink for tests and
//	                     tooling
//
// # Quick Start
//
// Define a provider, register it against a sink, and write an event:
//
//	session := memory.NewSession(memory.Config{Capacity: 1 << 20})
//	prov := provider.New("MyComponent", session)
//	evt := prov.Define("RequestDone", provider.LevelInfo, 0x5,
//	    field.Schema("status", field.KindUnsignedLE, 4, 4),
//	    field.Schema("url", field.KindStringUTF16, 0, 1),
//	)
//	if err := prov.Register(); err != nil {
//	    log.Fatal(err)
//	}
//	defer prov.Unregister()
//
//	session.Enable("MyComponent:")
//	writer.Write(evt,
//	    field.Uint32(200),
//	    field.StringUTF16(utf16.Encode([]rune("https://example.com"))),
//	)
//
// # Wire Layout
//
// Records are encoded field by field. Each field is preceded by alignment
// padding relative to the start of the record:
//
//	Kind                     Encoding
//	─────────────────────────────────────────────────────────────
//	SignedLE/BE, Unsigned,   raw bytes, natural alignment
//	FloatLE/BE
//	String8                  bytes including NUL terminator
//	Counted                  16-bit LE length prefix + bytes
//	StringUTF16/32           transcoded UTF-8 + NUL terminator
//	SequenceUTF16/32         16-bit LE length prefix + transcoded UTF-8
//
// Transcoded fields have content-dependent encoded lengths, so the writer
// runs an explicit planning pass before any buffer space is reserved. No
// reservation is ever made until the record's exact byte length and
// maximum alignment are known.
//
// # Thread Safety
//
// The write path is safe for any number of concurrent callers and holds
// no locks of its own; the only shared mutable state it touches is the
// sink's buffer, whose coordination is the sink's responsibility.
// Register and Unregister on one provider must be serialized by the
// caller, and no write may race a registration transition. This is a
// documented precondition, not an enforced lock: locking every hot-path
// write would be unacceptable.
//
// # Error Handling
//
// Every per-write failure is returned as an error value and is local to
// that call; no partial record ever becomes visible. The single fatal
// condition is registering an already-registered provider, which aborts
// the process because continuing would corrupt state visible to other
// threads.
package tracelog
