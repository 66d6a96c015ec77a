package writer

import (
	"bytes"
	stderrors "errors"
	"sync/atomic"
	"testing"

	"github.com/wippyai/tracelog"
	"github.com/wippyai/tracelog/errors"
	"github.com/wippyai/tracelog/field"
	"github.com/wippyai/tracelog/provider"
)

// countingSink records its reserve/commit traffic so tests can assert
// the exact per-probe sequence.
type countingSink struct {
	fail     bool
	reserves int
	commits  int
	size     uint32
	align    uint8
	data     []byte
}

func (s *countingSink) Reserve(eventID uint32, size uint32, align uint8) (tracelog.Reservation, error) {
	s.reserves++
	if s.fail {
		return nil, errors.BufferFull(size, 0)
	}
	s.size = size
	s.align = align
	return &countingReservation{sink: s, buf: make([]byte, 0, size)}, nil
}

type countingReservation struct {
	sink *countingSink
	buf  []byte
}

func (r *countingReservation) AlignPad(align uint8) {
	if align < 2 {
		return
	}
	for uint32(len(r.buf))%uint32(align) != 0 {
		r.buf = append(r.buf, 0)
	}
}

func (r *countingReservation) WriteBytes(p []byte) {
	r.buf = append(r.buf, p...)
}

func (r *countingReservation) Commit() {
	r.sink.commits++
	r.sink.data = r.buf
}

// stubRegistrar hands back bare enablements; tests bind probes to them
// directly.
type stubRegistrar struct{}

func (stubRegistrar) RegisterProvider(name string, schemas []tracelog.EventSchema) ([]*tracelog.Enablement, error) {
	states := make([]*tracelog.Enablement, len(schemas))
	for i := range states {
		states[i] = tracelog.NewEnablement()
	}
	return states, nil
}

func (stubRegistrar) UnregisterProvider(string) error { return nil }

func multiProbeEvent(t *testing.T, sinks ...*countingSink) *provider.Event {
	t.Helper()
	p := provider.New("MultiApp", stubRegistrar{})
	evt := p.Define("Op", provider.LevelInfo, 0)
	if err := p.Register(); err != nil {
		t.Fatalf("register: %v", err)
	}
	t.Cleanup(func() { p.Unregister() })

	on := &atomic.Bool{}
	on.Store(true)
	st := evt.Enablement()
	for i, s := range sinks {
		st.AddProbe(&tracelog.Probe{
			Buffer:         s,
			EventID:        uint32(i + 1),
			SessionActive:  on,
			ChannelEnabled: on,
			EventEnabled:   on,
		})
	}
	st.SetEnabled(true)
	return evt
}

func TestWriteAllProbesRecord(t *testing.T) {
	first := &countingSink{}
	second := &countingSink{}
	evt := multiProbeEvent(t, first, second)

	if err := Write(evt, field.Uint32(0x01020304)); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i, s := range []*countingSink{first, second} {
		if s.reserves != 1 || s.commits != 1 {
			t.Errorf("probe %d: reserves/commits got %d/%d, want 1/1", i+1, s.reserves, s.commits)
		}
		if s.size != 4 || s.align != 4 {
			t.Errorf("probe %d: reservation got %d/%d, want 4/4", i+1, s.size, s.align)
		}
		if !bytes.Equal(s.data, want) {
			t.Errorf("probe %d: data got %x, want %x", i+1, s.data, want)
		}
	}
}

func TestWriteBackpressureContinuesToNextProbe(t *testing.T) {
	full := &countingSink{fail: true}
	ok := &countingSink{}
	evt := multiProbeEvent(t, full, ok)

	err := Write(evt, field.Uint32(7))
	if err == nil {
		t.Fatal("expected the refused probe's error to surface")
	}
	if !stderrors.Is(err, errors.BufferFull(0, 0)) {
		t.Errorf("error kind: got %v, want buffer_full", err)
	}

	if full.reserves != 1 {
		t.Errorf("refused probe reserves: got %d, want 1", full.reserves)
	}
	if full.commits != 0 {
		t.Errorf("refused probe commits: got %d, want 0", full.commits)
	}
	if ok.reserves != 1 || ok.commits != 1 {
		t.Errorf("second probe reserves/commits: got %d/%d, want 1/1", ok.reserves, ok.commits)
	}
	if !bytes.Equal(ok.data, []byte{7, 0, 0, 0}) {
		t.Errorf("second probe data: got %x", ok.data)
	}
}

func TestWriteSkipsNotReadyProbe(t *testing.T) {
	active := &countingSink{}
	idle := &countingSink{}
	evt := multiProbeEvent(t, active)

	off := &atomic.Bool{}
	on := &atomic.Bool{}
	on.Store(true)
	evt.Enablement().AddProbe(&tracelog.Probe{
		Buffer:         idle,
		EventID:        2,
		SessionActive:  on,
		ChannelEnabled: on,
		EventEnabled:   off,
	})

	if err := Write(evt, field.Uint32(7)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if active.reserves != 1 || active.commits != 1 {
		t.Errorf("ready probe reserves/commits: got %d/%d, want 1/1", active.reserves, active.commits)
	}
	if idle.reserves != 0 {
		t.Errorf("disabled probe reserves: got %d, want 0", idle.reserves)
	}
}
