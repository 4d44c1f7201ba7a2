package log

import (
	"testing"
	"time"
)

// recordingLogger records every event delivered to it for inspection.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func sampleDpsEvent() Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: "4c2b6b8e-2d1a-4f9e-9a6e-9b0b7c1d2e3f",
		Direction:    DirectionIn,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		DeviceID:     "bf47c2e9d8a1f3b0c4d6",
		Message: &MessageEvent{
			Command:    0x0a,
			ReturnCode: 0,
			Dps:        map[string]any{"1": true, "2": "white"},
		},
	}
}

func TestMultiLoggerCallsAll(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	c := &recordingLogger{}

	multi := NewMultiLogger(a, b, c)
	event := sampleDpsEvent()
	multi.Log(event)

	for i, r := range []*recordingLogger{a, b, c} {
		if len(r.events) != 1 {
			t.Errorf("target %d: got %d events, want 1", i, len(r.events))
			continue
		}
		if r.events[0].DeviceID != event.DeviceID {
			t.Errorf("target %d: DeviceID = %q, want %q", i, r.events[0].DeviceID, event.DeviceID)
		}
		if r.events[0].Message.Dps["2"] != "white" {
			t.Errorf("target %d: Dps[\"2\"] = %v, want %q", i, r.events[0].Message.Dps["2"], "white")
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with no targets configured.
	multi.Log(sampleDpsEvent())
}

func TestMultiLoggerSkipsNilTargets(t *testing.T) {
	r := &recordingLogger{}
	// A host that conditionally builds its target list (e.g. only adds
	// a FileLogger when a log path is configured) may end up passing a
	// nil entry; MultiLogger must not panic on it.
	multi := NewMultiLogger(nil, r, nil)

	multi.Log(sampleDpsEvent())

	if len(r.events) != 1 {
		t.Fatalf("got %d events, want 1", len(r.events))
	}
}

func TestMultiLoggerSingleTarget(t *testing.T) {
	r := &recordingLogger{}
	multi := NewMultiLogger(r)

	event := sampleDpsEvent()
	event.Direction = DirectionOut
	event.Layer = LayerDevice
	multi.Log(event)

	if len(r.events) != 1 {
		t.Fatalf("got %d events, want 1", len(r.events))
	}
	if r.events[0].ConnectionID != event.ConnectionID {
		t.Errorf("ConnectionID = %q, want %q", r.events[0].ConnectionID, event.ConnectionID)
	}
}

func TestMultiLoggerInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*MultiLogger)(nil)
}
