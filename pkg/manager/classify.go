package manager

import "github.com/tuyalan/tuyalan-go/pkg/device"

// classify inspects a raw_dps_mode probe's first reply and returns a
// factory for the matching typed driver, or nil if the shape matches
// none of the known device classes. record includes the "devId" key
// alongside the raw numeric DPS keys, so its length counts both.
func classify(record map[string]any) func() device.Driver {
	if len(record) == 2 {
		if v, ok := record["1"]; ok {
			switch val := v.(type) {
			case string:
				switch val {
				case "1", "2", "3":
					return func() device.Driver { return device.NewOpenCloseSwitch(false) }
				}
			case bool:
				return func() device.Driver { return device.NewSwitch() }
			}
		}
	}

	if len(record) == 11 {
		if v, ok := record["2"]; ok {
			if s, ok := v.(string); ok {
				switch s {
				case "white", "colour", "scene":
					return func() device.Driver { return device.NewLight() }
				}
			}
		}
	}

	return nil
}
