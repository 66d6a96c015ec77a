// Package memory provides an in-memory trace session implementing the
// Sink and Registrar contracts: a bounded channel buffer with discard
// semantics, wire-name based enable/disable, and per-event filter
// attachment.
//
// It exists for tests, examples and tooling. A production sink is shared
// ring-buffer infrastructure outside this module; this one favors
// inspectability over throughput and uses plain mutexes where real
// buffers shard per CPU.
package memory

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wippyai/tracelog"
	"github.com/wippyai/tracelog/errors"
	"github.com/wippyai/tracelog/layout"
)

// DefaultCapacity is the default channel buffer capacity in bytes.
// 1 MB holds on the order of tens of thousands of typical records.
const DefaultCapacity = 1024 * 1024

// Config holds configuration for session creation
type Config struct {
	// Capacity is the channel buffer capacity in bytes. 0 means
	// DefaultCapacity.
	Capacity uint32

	// Inactive creates the session deactivated; no probe records until
	// SetActive(true).
	Inactive bool
}

// Record is one committed trace record.
type Record struct {
	EventID  uint32
	WireName string
	Data     []byte
}

// Session is an in-memory trace session with a single channel. It is
// safe for concurrent use: control-plane calls take the session lock,
// the record path touches only the channel.
type Session struct {
	mu        sync.Mutex
	active    atomic.Bool
	channel   *channel
	providers map[string]*providerState
	nextID    uint32
}

type providerState struct {
	events []*eventState
}

type eventState struct {
	schema     tracelog.EventSchema
	enablement *tracelog.Enablement
	probe      *tracelog.Probe
	enabled    atomic.Bool
}

// NewSession creates an active session with one enabled channel.
func NewSession(cfg Config) *Session {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	s := &Session{
		channel:   newChannel(capacity),
		providers: make(map[string]*providerState),
	}
	s.active.Store(!cfg.Inactive)
	s.channel.enabled.Store(true)
	return s
}

// RegisterProvider implements tracelog.Registrar. Each schema gets a
// probe bound to the session channel, initially disabled. Registering
// two providers under one name is not supported.
func (s *Session) RegisterProvider(name string, schemas []tracelog.EventSchema) ([]*tracelog.Enablement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[name]; ok {
		return nil, errors.New(errors.PhaseRegister, errors.KindAlreadyRegistered).
			Provider(name).
			Detail("a provider with this name is already registered").
			Build()
	}

	ps := &providerState{events: make([]*eventState, len(schemas))}
	states := make([]*tracelog.Enablement, len(schemas))
	for i, schema := range schemas {
		id := s.nextID
		s.nextID++

		es := &eventState{
			schema:     schema,
			enablement: tracelog.NewEnablement(),
		}
		es.probe = &tracelog.Probe{
			Buffer:         s.channel,
			EventID:        id,
			SessionActive:  &s.active,
			ChannelEnabled: &s.channel.enabled,
			EventEnabled:   &es.enabled,
		}
		es.enablement.AddProbe(es.probe)

		s.channel.setName(id, schema.WireName)
		ps.events[i] = es
		states[i] = es.enablement
	}
	s.providers[name] = ps
	return states, nil
}

// UnregisterProvider implements tracelog.Registrar.
func (s *Session) UnregisterProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.providers[name]
	if !ok {
		return errors.New(errors.PhaseRegister, errors.KindNotRegistered).
			Provider(name).
			Detail("provider is not registered with this session").
			Build()
	}
	for _, es := range ps.events {
		es.enabled.Store(false)
		es.enablement.SetEnabled(false)
	}
	delete(s.providers, name)
	return nil
}

// Enable turns on every event whose wire name contains match. The
// keyword suffix makes this the session-side keyword filter: Enable
// (";k2;") enables all events carrying keyword bit 2.
func (s *Session) Enable(match string) {
	s.setEnabled(match, true)
}

// Disable turns off every event whose wire name contains match.
func (s *Session) Disable(match string) {
	s.setEnabled(match, false)
}

func (s *Session) setEnabled(match string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forEach(func(es *eventState) {
		if strings.Contains(es.schema.WireName, match) {
			es.enabled.Store(enabled)
		}
	})
	s.refreshLocked()
}

// AttachFilter binds a filter program to every event whose wire name
// contains match. Attach filters before enabling the event: the probe's
// filter binding is not synchronized against in-flight writes.
func (s *Session) AttachFilter(match string, f tracelog.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forEach(func(es *eventState) {
		if strings.Contains(es.schema.WireName, match) {
			es.probe.Filter = f
		}
	})
}

// SetActive starts or stops the whole session.
func (s *Session) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.Store(active)
	s.refreshLocked()
}

// Records returns the committed records in commit order.
func (s *Session) Records() []Record {
	return s.channel.records()
}

// Drain removes all committed records and frees their buffer space.
func (s *Session) Drain() []Record {
	return s.channel.drain()
}

// Used returns the bytes currently held by committed and in-flight
// records.
func (s *Session) Used() uint32 {
	return s.channel.used()
}

// Capacity returns the channel buffer capacity in bytes.
func (s *Session) Capacity() uint32 {
	return s.channel.capacity
}

func (s *Session) forEach(fn func(*eventState)) {
	for _, ps := range s.providers {
		for _, es := range ps.events {
			fn(es)
		}
	}
}

// refreshLocked recomputes each event's summary enablement flag so the
// writer's fast path stays a single load.
func (s *Session) refreshLocked() {
	active := s.active.Load() && s.channel.enabled.Load()
	s.forEach(func(es *eventState) {
		es.enablement.SetEnabled(active && es.enabled.Load())
	})
}

// channel is the session's bounded record buffer. Reserve pre-charges
// the record's size; Commit publishes it. A record that does not fit is
// discarded with a buffer_full error — discard mode, not overwrite.
type channel struct {
	mu             sync.Mutex
	enabled        atomic.Bool
	capacity       uint32
	committedBytes uint32
	inflightBytes  uint32
	names          map[uint32]string
	committed      []Record
}

func newChannel(capacity uint32) *channel {
	return &channel{
		capacity: capacity,
		names:    make(map[uint32]string),
	}
}

func (c *channel) setName(id uint32, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[id] = name
}

// Reserve implements tracelog.Sink.
func (c *channel) Reserve(eventID uint32, size uint32, align uint8) (tracelog.Reservation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	free := c.capacity - c.committedBytes - c.inflightBytes
	if size > free {
		return nil, errors.BufferFull(size, free)
	}
	c.inflightBytes += size

	return &reservation{
		ch:      c,
		eventID: eventID,
		size:    size,
		buf:     make([]byte, 0, size),
	}, nil
}

func (c *channel) records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.committed))
	copy(out, c.committed)
	return out
}

// drain frees committed space only; in-flight reservations keep their
// charge until they commit.
func (c *channel) drain() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.committed
	c.committed = nil
	c.committedBytes = 0
	return out
}

func (c *channel) used() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committedBytes + c.inflightBytes
}

// reservation is one in-flight record. The writer owns it exclusively
// until Commit, so no locking until then.
type reservation struct {
	ch      *channel
	eventID uint32
	size    uint32
	buf     []byte
}

// AlignPad implements tracelog.Reservation.
func (r *reservation) AlignPad(align uint8) {
	if align < 2 {
		return
	}
	target := layout.AlignUp(uint32(len(r.buf)), align)
	for uint32(len(r.buf)) < target {
		r.buf = append(r.buf, 0)
	}
}

// WriteBytes implements tracelog.Reservation.
func (r *reservation) WriteBytes(p []byte) {
	r.buf = append(r.buf, p...)
}

// Commit implements tracelog.Reservation.
func (r *reservation) Commit() {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()
	r.ch.inflightBytes -= r.size
	r.ch.committedBytes += r.size
	r.ch.committed = append(r.ch.committed, Record{
		EventID:  r.eventID,
		WireName: r.ch.names[r.eventID],
		Data:     r.buf,
	})
}
