package device

import "fmt"

// Driver maps a typed device's ordered DPS indices to semantic
// attribute names and handles value coercion in both directions. DPS
// index i+1 (1-based on the wire) corresponds to Attributes()[i].
type Driver interface {
	// Attributes returns the ordered attribute names this driver knows.
	Attributes() []string

	// Coerce converts an application-supplied value for Set into the
	// wire-ready DPS value for the named attribute.
	Coerce(name string, value any) (any, error)

	// Normalize reshapes an inbound record for delivery to observers,
	// e.g. a boolean power flag to "on"/"off", or a DPS colour string
	// back to HSV. It may mutate and returns the same map.
	Normalize(record map[string]any) map[string]any

	// OnConnect runs once a session's TCP connection is established,
	// after Start has notified the parents and launched the read and
	// heartbeat loops. Drivers that need an initial command to behave
	// (OpenCloseSwitch) send it here.
	OnConnect(s *Session)
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		return v == 1
	case string:
		switch v {
		case "on", "On", "ON", "oN":
			return true
		}
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func unknownAttribute(driverName, name string) error {
	return fmt.Errorf("device: %s has no attribute %q", driverName, name)
}
