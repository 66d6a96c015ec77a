package tracelog

import (
	"sync/atomic"

	"github.com/wippyai/tracelog/field"
)

// Sink is the trace buffer a writer encodes records into. Implementations
// own all cross-thread coordination for the underlying storage; the write
// path assumes Reserve is safe to call from any goroutine.
type Sink interface {
	// Reserve allocates space for one record of exactly size bytes with
	// the given maximum field alignment. It returns an error when the
	// buffer cannot accept the record (backpressure); no bytes of the
	// record are visible until Commit.
	Reserve(eventID uint32, size uint32, align uint8) (Reservation, error)
}

// Reservation is an in-progress record. The caller must write exactly the
// reserved number of bytes (alignment padding included) and then Commit.
type Reservation interface {
	// AlignPad advances the write position to the next multiple of align
	// relative to the start of the record, writing zero padding.
	AlignPad(align uint8)

	// WriteBytes appends p to the record.
	WriteBytes(p []byte)

	// Commit publishes the record. The reservation must not be used
	// afterwards.
	Commit()
}

// Registrar is the registration half of the trace infrastructure. It
// receives finalized event schemas at provider registration and hands
// back the sink-owned enablement state for each event, in schema order.
type Registrar interface {
	RegisterProvider(name string, schemas []EventSchema) ([]*Enablement, error)
	UnregisterProvider(name string) error
}

// Filter is a compiled filter program. Evaluate receives the flattened
// scalar view of an event's fields and reports whether the record should
// be written. Implementations must be safe for concurrent use.
type Filter interface {
	Evaluate(scalars []uint64) bool
}

// EventSchema describes one event to the registrar: its fully-qualified
// wire name (including any keyword suffix), verbosity level, and ordered
// field metadata.
type EventSchema struct {
	WireName string
	Level    uint8
	Fields   []field.Spec
}

// Probe binds an event to one session's channel buffer. An event may
// carry several probes when multiple sessions have it enabled; the writer
// encodes the record once per ready probe.
type Probe struct {
	// Buffer receives this probe's records.
	Buffer Sink

	// Filter, when non-nil, decides per record whether this probe
	// records it.
	Filter Filter

	// EventID identifies the event within the sink's session.
	EventID uint32

	// SessionActive, ChannelEnabled and EventEnabled are owned by the
	// sink. All three must be true for the probe to record.
	SessionActive  *atomic.Bool
	ChannelEnabled *atomic.Bool
	EventEnabled   *atomic.Bool
}

// Ready reports whether this probe currently records.
func (p *Probe) Ready() bool {
	return p.SessionActive.Load() && p.ChannelEnabled.Load() && p.EventEnabled.Load()
}

// Enablement is the sink-owned shared state behind one event's fast
// enablement check. The provider publishes a pointer to it into the event
// record at registration completion; the writer reads it lock-free on
// every call.
//
// The enabled flag is a summary: the sink keeps it true whenever at least
// one probe is ready, so the disabled path costs two atomic loads and
// touches nothing else.
type Enablement struct {
	enabled atomic.Bool
	probes  atomic.Pointer[[]*Probe]
}

// NewEnablement returns enablement state with no probes, disabled.
func NewEnablement() *Enablement {
	e := &Enablement{}
	probes := make([]*Probe, 0)
	e.probes.Store(&probes)
	return e
}

// Enabled reports the summary enablement flag.
func (e *Enablement) Enabled() bool {
	return e.enabled.Load()
}

// SetEnabled updates the summary flag. Called by the sink when sessions
// enable or disable the event.
func (e *Enablement) SetEnabled(v bool) {
	e.enabled.Store(v)
}

// Probes returns the current probe list. The returned slice is immutable.
func (e *Enablement) Probes() []*Probe {
	return *e.probes.Load()
}

// AddProbe binds a probe. Copy-on-write: concurrent readers keep the old
// list. Callers (sinks) serialize Add/Remove among themselves.
func (e *Enablement) AddProbe(p *Probe) {
	old := *e.probes.Load()
	next := make([]*Probe, len(old)+1)
	copy(next, old)
	next[len(old)] = p
	e.probes.Store(&next)
}

// RemoveProbe unbinds a probe previously added with AddProbe.
func (e *Enablement) RemoveProbe(p *Probe) {
	old := *e.probes.Load()
	next := make([]*Probe, 0, len(old))
	for _, q := range old {
		if q != p {
			next = append(next, q)
		}
	}
	e.probes.Store(&next)
}
