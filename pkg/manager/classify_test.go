package manager

import (
	"strconv"
	"testing"

	"github.com/tuyalan/tuyalan-go/internal/fixtures"
	"github.com/tuyalan/tuyalan-go/pkg/device"
)

func TestClassify_OpenCloseSwitchShape(t *testing.T) {
	for _, v := range []string{"1", "2", "3"} {
		newDriver := classify(map[string]any{"devId": "abc", "1": v})
		if newDriver == nil {
			t.Fatalf("classify(%q): expected a match", v)
		}
		if _, ok := newDriver().(*device.OpenCloseSwitch); !ok {
			t.Errorf("classify(%q) = %T, want *device.OpenCloseSwitch", v, newDriver())
		}
	}
}

func TestClassify_SwitchShape(t *testing.T) {
	newDriver := classify(map[string]any{"devId": "abc", "1": true})
	if newDriver == nil {
		t.Fatal("expected a match for boolean DPS")
	}
	if _, ok := newDriver().(*device.Switch); !ok {
		t.Errorf("driver = %T, want *device.Switch", newDriver())
	}
}

func TestClassify_LightShape(t *testing.T) {
	record := map[string]any{"devId": "abc"}
	for i := 1; i <= 10; i++ {
		record[strconv.Itoa(i)] = "x"
	}
	record["2"] = "white"

	newDriver := classify(record)
	if newDriver == nil {
		t.Fatal("expected a match for an 11-field record with mode=white")
	}
	if _, ok := newDriver().(*device.Light); !ok {
		t.Errorf("driver = %T, want *device.Light", newDriver())
	}
}

func TestClassify_UnrecognizedShapeReturnsNil(t *testing.T) {
	if d := classify(map[string]any{"devId": "abc", "1": "sideways"}); d != nil {
		t.Errorf("expected no match, got %T", d())
	}
	if d := classify(map[string]any{"devId": "abc", "1": 42}); d != nil {
		t.Errorf("expected no match for a non-bool/string value, got %T", d())
	}
}

func TestClassify_Fixtures(t *testing.T) {
	fxs, err := fixtures.LoadClassificationFixtures()
	if err != nil {
		t.Fatalf("LoadClassificationFixtures: %v", err)
	}

	for _, fx := range fxs {
		t.Run(fx.Name, func(t *testing.T) {
			newDriver := classify(fx.Record)

			if fx.Want == "none" {
				if newDriver != nil {
					t.Fatalf("classify(%q) = %T, want no match", fx.Name, newDriver())
				}
				return
			}

			if newDriver == nil {
				t.Fatalf("classify(%q): expected a match for want=%q", fx.Name, fx.Want)
			}

			driver := newDriver()
			switch fx.Want {
			case "open_close_switch":
				if _, ok := driver.(*device.OpenCloseSwitch); !ok {
					t.Errorf("classify(%q) = %T, want *device.OpenCloseSwitch", fx.Name, driver)
				}
			case "switch":
				if _, ok := driver.(*device.Switch); !ok {
					t.Errorf("classify(%q) = %T, want *device.Switch", fx.Name, driver)
				}
			case "light":
				if _, ok := driver.(*device.Light); !ok {
					t.Errorf("classify(%q) = %T, want *device.Light", fx.Name, driver)
				}
			default:
				t.Fatalf("fixture %q: unrecognized want %q", fx.Name, fx.Want)
			}
		})
	}
}
