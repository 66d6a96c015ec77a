// Package provider manages trace provider registration and the event
// records writes are issued against.
//
// A Provider owns a set of events defined before registration. Register
// resolves each event's wire name, hands the finalized schemas to the
// registration sink, and publishes the sink-owned enablement state into
// each event record; from then on the records are immutable and read
// lock-free by the write path.
//
// Register and Unregister transitions are caller-serialized: the owning
// application constructs the provider at startup, registers it once, and
// unregisters it at shutdown. No write may race a transition. This is a
// documented precondition rather than an internal lock — locking every
// hot-path write would be unacceptable.
package provider

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/tracelog"
	"github.com/wippyai/tracelog/errors"
	"github.com/wippyai/tracelog/field"
)

// Event verbosity levels, most severe first.
const (
	LevelCritical uint8 = 1
	LevelError    uint8 = 2
	LevelWarning  uint8 = 3
	LevelInfo     uint8 = 4
	LevelVerbose  uint8 = 5
)

// State is a provider's registration state.
type State int32

const (
	StateUnregistered State = iota
	StateRegistering
	StateRegistered
)

var stateNames = [...]string{
	StateUnregistered: "unregistered",
	StateRegistering:  "registering",
	StateRegistered:   "registered",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Event is one call site's static event record. Created with an
// unresolved wire name, resolved exactly once during the owning
// provider's registration, immutable and lock-free-readable thereafter.
type Event struct {
	provider   *Provider
	name       string
	wireName   string
	level      uint8
	keywords   uint64
	fields     []field.Spec
	enablement atomic.Pointer[tracelog.Enablement]
}

// Name returns the bare event name as passed to Define.
func (e *Event) Name() string { return e.name }

// WireName returns the fully-qualified registered name, or "" before
// registration resolves it.
func (e *Event) WireName() string { return e.wireName }

// Level returns the event's verbosity level.
func (e *Event) Level() uint8 { return e.level }

// Keywords returns the event's keyword bits.
func (e *Event) Keywords() uint64 { return e.keywords }

// Provider returns the provider name this event belongs to.
func (e *Event) Provider() string { return e.provider.name }

// Enablement returns the sink-owned enablement state, or nil while the
// provider is unregistered. The load carries acquire semantics: a
// caller that observes non-nil state also observes the fully-populated
// event record published before it.
func (e *Event) Enablement() *tracelog.Enablement {
	return e.enablement.Load()
}

// Enabled is the cheap enablement check: two atomic loads, no buffer
// contact. This path dominates production traffic.
func (e *Event) Enabled() bool {
	st := e.enablement.Load()
	return st != nil && st.Enabled()
}

// Provider is a named collection of events with an owner-controlled
// registration lifecycle.
type Provider struct {
	name      string
	registrar tracelog.Registrar
	state     atomic.Int32
	events    []*Event
}

// New creates an unregistered provider that will register through the
// given registrar.
func New(name string, registrar tracelog.Registrar) *Provider {
	return &Provider{name: name, registrar: registrar}
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// State returns the current registration state.
func (p *Provider) State() State {
	return State(p.state.Load())
}

// Define adds an event to the provider. All events must be defined
// before Register; an event defined afterwards stays unresolved and
// permanently disabled.
func (p *Provider) Define(name string, level uint8, keywords uint64, fields ...field.Spec) *Event {
	e := &Event{
		provider: p,
		name:     name,
		level:    level,
		keywords: keywords,
		fields:   fields,
	}
	p.events = append(p.events, e)
	return e
}

// Register resolves every event's wire name, registers the finalized
// schemas with the registrar, and publishes each event's enablement
// state. On registrar failure the provider reverts to unregistered and
// the error is returned.
//
// Registering an already-registered provider is a fatal programmer
// error: the process aborts, because proceeding would corrupt shared
// registration state visible to other threads and providers.
func (p *Provider) Register() error {
	if !p.state.CompareAndSwap(int32(StateUnregistered), int32(StateRegistering)) {
		Logger().Fatal("provider already registered",
			zap.String("provider", p.name),
			zap.Stringer("state", p.State()))
	}

	schemas := make([]tracelog.EventSchema, len(p.events))
	for i, e := range p.events {
		if e.wireName == "" {
			name, truncated := BuildWireName(p.name, e.name, e.keywords)
			if truncated {
				Logger().Error("event wire name truncated",
					zap.String("provider", p.name),
					zap.String("event", e.name),
					zap.String("wireName", name))
			}
			e.wireName = name
		}
		schemas[i] = tracelog.EventSchema{
			WireName: e.wireName,
			Level:    e.level,
			Fields:   e.fields,
		}
	}

	states, err := p.registrar.RegisterProvider(p.name, schemas)
	if err != nil {
		p.state.Store(int32(StateUnregistered))
		return errors.Registration(p.name, err)
	}
	if len(states) != len(schemas) {
		p.state.Store(int32(StateUnregistered))
		return errors.New(errors.PhaseRegister, errors.KindRegistration).
			Provider(p.name).
			Detail("registrar returned %d enablement states for %d events", len(states), len(schemas)).
			Build()
	}

	// Publish enablement last: a writer that observes the pointer also
	// observes the resolved wire name and schema stored above.
	for i, e := range p.events {
		e.enablement.Store(states[i])
	}
	p.state.Store(int32(StateRegistered))

	Logger().Info("provider registered",
		zap.String("provider", p.name),
		zap.Int("events", len(p.events)))
	return nil
}

// Unregister withdraws the provider from the registrar. Calling it on an
// already-unregistered provider is a no-op success and issues no
// registrar calls, so teardown of a partially-initialized component is
// always safe.
func (p *Provider) Unregister() error {
	if State(p.state.Swap(int32(StateUnregistered))) == StateUnregistered {
		return nil
	}

	for _, e := range p.events {
		e.enablement.Store(nil)
	}

	err := p.registrar.UnregisterProvider(p.name)
	if err != nil {
		Logger().Warn("provider unregister failed",
			zap.String("provider", p.name),
			zap.Error(err))
		return err
	}
	Logger().Info("provider unregistered", zap.String("provider", p.name))
	return nil
}
