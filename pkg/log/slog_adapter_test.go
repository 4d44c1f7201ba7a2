package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestAdapter() (*SlogAdapter, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogAdapter(slog.New(handler)), &buf
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	adapter, buf := newTestAdapter()

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-bf47c2e9",
		DeviceID:     "bf47c2e9d8a1f3b0c4d6",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame:        &FrameEvent{Size: 256, Data: []byte{0x00, 0x00, 0x55, 0xaa}},
	})

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["conn_id"] != "conn-bf47c2e9" {
		t.Errorf("conn_id: got %v, want %q", logEntry["conn_id"], "conn-bf47c2e9")
	}
	if logEntry["device_id"] != "bf47c2e9d8a1f3b0c4d6" {
		t.Errorf("device_id: got %v, want a device id", logEntry["device_id"])
	}
	if logEntry["direction"] != "IN" {
		t.Errorf("direction: got %v, want %q", logEntry["direction"], "IN")
	}
	if logEntry["layer"] != "TRANSPORT" {
		t.Errorf("layer: got %v, want %q", logEntry["layer"], "TRANSPORT")
	}

	frame, ok := logEntry["frame"].(map[string]any)
	if !ok {
		t.Fatalf("frame group missing or wrong type: %v", logEntry["frame"])
	}
	if frame["size"] != float64(256) {
		t.Errorf("frame.size: got %v, want %v", frame["size"], 256)
	}
}

func TestSlogAdapterLogsMessageEventWithDps(t *testing.T) {
	adapter, buf := newTestAdapter()

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-switch-1",
		DeviceID:     "a91e2d7c6b5f48301a99",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		Message:      &MessageEvent{Command: 0x07, ReturnCode: 0, Dps: map[string]any{"1": true}},
	})

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	message, ok := logEntry["message"].(map[string]any)
	if !ok {
		t.Fatalf("message group missing or wrong type: %v", logEntry["message"])
	}
	if message["command"] != float64(0x07) {
		t.Errorf("message.command: got %v, want %v", message["command"], 0x07)
	}
	if message["return_code"] != float64(0) {
		t.Errorf("message.return_code: got %v, want %v", message["return_code"], 0)
	}
	dps, ok := message["dps"].(map[string]any)
	if !ok || dps["1"] != true {
		t.Errorf("message.dps: got %v, want {\"1\": true}", message["dps"])
	}
}

func TestSlogAdapterLogsStateChangeEvent(t *testing.T) {
	adapter, buf := newTestAdapter()

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-light-1",
		Direction:    DirectionIn,
		Layer:        LayerDevice,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntitySession,
			OldState: "connected",
			NewState: "disconnected",
			Reason:   "heartbeat timeout",
		},
	})

	output := buf.String()
	if !strings.Contains(output, "heartbeat timeout") {
		t.Error("output does not contain the state change reason")
	}

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	change, ok := logEntry["state_change"].(map[string]any)
	if !ok || change["new_state"] != "disconnected" {
		t.Errorf("state_change: got %v, want new_state=disconnected", logEntry["state_change"])
	}
}

func TestSlogAdapterIncludesConnectionID(t *testing.T) {
	adapter, buf := newTestAdapter()

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "9c1e2b4a-7d3f-4a8e-b1c2-5d6e7f809a1b",
		Direction:    DirectionIn,
		Layer:        LayerDevice,
		Category:     CategoryState,
		StateChange:  &StateChangeEvent{Entity: StateEntitySession, NewState: "connected"},
	})

	if !strings.Contains(buf.String(), "9c1e2b4a-7d3f-4a8e-b1c2-5d6e7f809a1b") {
		t.Error("output does not contain connection ID")
	}
}

func TestSlogAdapterInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
