package device

// Switch drives a single boolean power datapoint at DPS index 1.
type Switch struct{}

// NewSwitch returns a Switch driver.
func NewSwitch() *Switch { return &Switch{} }

func (d *Switch) Attributes() []string { return []string{"power"} }

func (d *Switch) Coerce(name string, value any) (any, error) {
	if name != "power" {
		return nil, unknownAttribute("switch", name)
	}
	return coerceBool(value), nil
}

func (d *Switch) Normalize(record map[string]any) map[string]any {
	if v, ok := record["power"]; ok {
		if b, ok := v.(bool); ok {
			if b {
				record["power"] = "on"
			} else {
				record["power"] = "off"
			}
		}
	}
	return record
}

func (d *Switch) OnConnect(*Session) {}

// On sends power:true.
func (d *Switch) On(s *Session) error { return s.Set(map[string]any{"power": true}) }

// Off sends power:false.
func (d *Switch) Off(s *Session) error { return s.Set(map[string]any{"power": false}) }
