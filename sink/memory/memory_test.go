package memory

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/tracelog"
	"github.com/wippyai/tracelog/errors"
	"github.com/wippyai/tracelog/field"
)

func twoEventSchemas() []tracelog.EventSchema {
	return []tracelog.EventSchema{
		{WireName: "App:Launch;k0;", Level: 4, Fields: []field.Spec{
			{Name: "version", Kind: field.KindString8},
		}},
		{WireName: "App:Request;k2;", Level: 4},
	}
}

func TestRegisterProvider(t *testing.T) {
	s := NewSession(Config{})

	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("states: got %d, want 2", len(states))
	}
	for i, st := range states {
		if st.Enabled() {
			t.Errorf("event %d enabled at registration", i)
		}
		if len(st.Probes()) != 1 {
			t.Errorf("event %d probes: got %d, want 1", i, len(st.Probes()))
		}
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := s.RegisterProvider("App", nil)
		if err == nil {
			t.Fatal("expected already_registered error")
		}
		want := &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindAlreadyRegistered}
		if !stderrors.Is(err, want) {
			t.Errorf("error kind: got %v", err)
		}
	})
}

func TestUnregisterProvider(t *testing.T) {
	s := NewSession(Config{})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Enable("")
	if !states[0].Enabled() {
		t.Fatal("enable did not take")
	}

	if err := s.UnregisterProvider("App"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if states[0].Enabled() {
		t.Error("enablement survives unregister")
	}

	err = s.UnregisterProvider("App")
	want := &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindNotRegistered}
	if !stderrors.Is(err, want) {
		t.Errorf("second unregister: got %v, want not_registered", err)
	}
}

func TestEnableMatching(t *testing.T) {
	s := NewSession(Config{})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Enable(";k2;")
	if states[0].Enabled() {
		t.Error("Launch enabled by k2 match")
	}
	if !states[1].Enabled() {
		t.Error("Request not enabled by k2 match")
	}
	if !states[1].Probes()[0].Ready() {
		t.Error("Request probe not ready")
	}

	s.Enable("")
	if !states[0].Enabled() || !states[1].Enabled() {
		t.Error("empty match should enable everything")
	}

	s.Disable(":Launch")
	if states[0].Enabled() {
		t.Error("Launch still enabled after disable")
	}
	if !states[1].Enabled() {
		t.Error("Request disabled by Launch match")
	}
}

func TestSetActive(t *testing.T) {
	s := NewSession(Config{Inactive: true})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Enable("")
	if states[0].Enabled() {
		t.Error("event enabled while session inactive")
	}
	if states[0].Probes()[0].Ready() {
		t.Error("probe ready while session inactive")
	}

	s.SetActive(true)
	if !states[0].Enabled() {
		t.Error("event not enabled after activation")
	}

	s.SetActive(false)
	if states[0].Enabled() {
		t.Error("event enabled after deactivation")
	}
}

type allowAll struct{}

func (allowAll) Evaluate([]uint64) bool { return true }

func TestAttachFilter(t *testing.T) {
	s := NewSession(Config{})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	f := allowAll{}
	s.AttachFilter(":Request", f)
	if states[0].Probes()[0].Filter != nil {
		t.Error("filter attached to non-matching event")
	}
	if states[1].Probes()[0].Filter != f {
		t.Error("filter not attached to matching event")
	}
}

func TestReserveCommit(t *testing.T) {
	s := NewSession(Config{})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	probe := states[1].Probes()[0]

	res, err := probe.Buffer.Reserve(probe.EventID, 8, 4)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := s.Used(); got != 8 {
		t.Errorf("used after reserve: got %d, want 8", got)
	}
	if got := len(s.Records()); got != 0 {
		t.Errorf("records before commit: got %d, want 0", got)
	}

	res.WriteBytes([]byte{0xaa})
	res.AlignPad(4)
	res.WriteBytes([]byte{1, 2, 3, 4})
	res.Commit()

	records := s.Records()
	if len(records) != 1 {
		t.Fatalf("records: got %d, want 1", len(records))
	}
	want := []byte{0xaa, 0, 0, 0, 1, 2, 3, 4}
	if !bytes.Equal(records[0].Data, want) {
		t.Errorf("data: got %x, want %x", records[0].Data, want)
	}
	if records[0].WireName != "App:Request;k2;" {
		t.Errorf("wire name: got %q", records[0].WireName)
	}
	if records[0].EventID != probe.EventID {
		t.Errorf("event id: got %d, want %d", records[0].EventID, probe.EventID)
	}
}

func TestDrainKeepsInflightCharge(t *testing.T) {
	s := NewSession(Config{})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	probe := states[0].Probes()[0]

	res, err := probe.Buffer.Reserve(probe.EventID, 8, 1)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	// Draining while a reservation is in flight frees committed space
	// only; the reservation keeps its charge until it commits.
	s.Drain()
	if got := s.Used(); got != 8 {
		t.Errorf("used after drain with in-flight reservation: got %d, want 8", got)
	}

	res.WriteBytes(make([]byte, 8))
	res.Commit()
	if got := s.Used(); got != 8 {
		t.Errorf("used after commit: got %d, want 8", got)
	}
	if got := len(s.Records()); got != 1 {
		t.Errorf("records: got %d, want 1", got)
	}

	s.Drain()
	if got := s.Used(); got != 0 {
		t.Errorf("used after final drain: got %d, want 0", got)
	}
}

func TestReserveBufferFull(t *testing.T) {
	s := NewSession(Config{Capacity: 10})
	states, err := s.RegisterProvider("App", twoEventSchemas())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	probe := states[0].Probes()[0]

	if _, err := probe.Buffer.Reserve(probe.EventID, 8, 1); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	_, err = probe.Buffer.Reserve(probe.EventID, 4, 1)
	if err == nil {
		t.Fatal("expected buffer_full error")
	}
	if !stderrors.Is(err, errors.BufferFull(0, 0)) {
		t.Errorf("error kind: got %v, want buffer_full", err)
	}

	// Drain frees the space.
	s.Drain()
	if got := s.Used(); got != 0 {
		t.Errorf("used after drain: got %d, want 0", got)
	}
	if _, err := probe.Buffer.Reserve(probe.EventID, 4, 1); err != nil {
		t.Errorf("reserve after drain: %v", err)
	}
}
