package device

import (
	"fmt"
	"strings"
)

// OpenCloseSwitch drives a single curtain-style state datapoint at DPS
// index 1, whose wire values are "1" (open), "2" (close), "3" (idle).
// Inverted swaps open/close at the API boundary only; the wire values
// are unaffected.
type OpenCloseSwitch struct {
	Inverted bool
}

// NewOpenCloseSwitch returns an OpenCloseSwitch driver.
func NewOpenCloseSwitch(inverted bool) *OpenCloseSwitch {
	return &OpenCloseSwitch{Inverted: inverted}
}

func (d *OpenCloseSwitch) Attributes() []string { return []string{"state"} }

func (d *OpenCloseSwitch) Coerce(name string, value any) (any, error) {
	if name != "state" {
		return nil, unknownAttribute("open/close switch", name)
	}
	state, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("device: state must be a string, got %T", value)
	}
	switch strings.ToLower(state) {
	case "open":
		return "1", nil
	case "close":
		return "2", nil
	case "idle":
		return "3", nil
	}
	return nil, fmt.Errorf("device: unknown state %q", state)
}

// Normalize maps wire state "1"/"2"/other to "opening"/"closing"/
// "idling", swapped when Inverted.
func (d *OpenCloseSwitch) Normalize(record map[string]any) map[string]any {
	v, ok := record["state"]
	if !ok {
		return record
	}
	s, _ := v.(string)
	switch s {
	case "1":
		if d.Inverted {
			record["state"] = "closing"
		} else {
			record["state"] = "opening"
		}
	case "2":
		if d.Inverted {
			record["state"] = "opening"
		} else {
			record["state"] = "closing"
		}
	default:
		record["state"] = "idling"
	}
	return record
}

// OnConnect sends an idle command; some hardware requires a set before
// it will start reporting state.
func (d *OpenCloseSwitch) OnConnect(s *Session) {
	_ = d.Idle(s)
}

// Open requests the curtain open, or close if Inverted.
func (d *OpenCloseSwitch) Open(s *Session) error {
	if d.Inverted {
		return s.Set(map[string]any{"state": "close"})
	}
	return s.Set(map[string]any{"state": "open"})
}

// Close requests the curtain close, or open if Inverted.
func (d *OpenCloseSwitch) Close(s *Session) error {
	if d.Inverted {
		return s.Set(map[string]any{"state": "open"})
	}
	return s.Set(map[string]any{"state": "close"})
}

// Idle requests the curtain stop.
func (d *OpenCloseSwitch) Idle(s *Session) error {
	return s.Set(map[string]any{"state": "idle"})
}
