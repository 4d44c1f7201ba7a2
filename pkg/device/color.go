package device

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// hsvToTuya encodes h∈[0,360), s,v∈[0,100] into the 14-hex-digit
// RRGGBB00HHSSVV string a Light's colour DPS expects. RGB is the
// HSV-to-RGB conversion scaled to a byte. The SSVV digits carry s and v
// directly as their 0-100 value. The HH digits carry round(h*510/360)
// clamped to 0xff, so every hue from 180° up encodes as 0xff and decodes
// through tuyaToHSV as 180; hues below 180° round-trip to within a
// degree.
func hsvToTuya(h, s, v float64) string {
	r, g, b := hsvToRGB(h/360, s/100, v/100)
	hByte := clampByte(math.Round(h / 360 * 510))
	sByte := clampByte(math.Round(s))
	vByte := clampByte(math.Round(v))
	return fmt.Sprintf("%02x%02x%02x00%02x%02x%02x",
		clampByte(math.Round(r*255)), clampByte(math.Round(g*255)), clampByte(math.Round(b*255)),
		hByte, sByte, vByte)
}

// tuyaToHSV decodes the trailing 6 hex digits of a colour DPS string
// back into h,s,v. The leading RRGGBB00 prefix is ignored, matching
// aiotuya's tuya_to_hsv.
func tuyaToHSV(colour string) (h, s, v float64, err error) {
	if len(colour) < 6 {
		return 0, 0, 0, fmt.Errorf("device: colour string %q too short", colour)
	}
	tail := colour[len(colour)-6:]
	hByte, err := strconv.ParseInt(tail[0:2], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("device: invalid colour string %q: %w", colour, err)
	}
	sByte, err := strconv.ParseInt(tail[2:4], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("device: invalid colour string %q: %w", colour, err)
	}
	vByte, err := strconv.ParseInt(tail[4:6], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("device: invalid colour string %q: %w", colour, err)
	}
	h = math.Round(float64(hByte) * 360 / 510)
	s = float64(sByte)
	v = float64(vByte)
	return h, s, v, nil
}

// hsvToRGB converts h,s,v each in [0,1] to r,g,b each in [0,1], matching
// Python's colorsys.hsv_to_rgb.
func hsvToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}
	h = math.Mod(h, 1) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func clampByte(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// kelvinToDPS maps a Kelvin temperature linearly to [0,255] across
// [minKelvin,maxKelvin]. Kelvin below minKelvin maps to 0.
func kelvinToDPS(kelvin, minKelvin, maxKelvin int) int {
	if kelvin < minKelvin {
		return 0
	}
	k := kelvin
	if k > maxKelvin {
		k = maxKelvin
	}
	return int(math.Round(float64((k-minKelvin)*255) / float64(maxKelvin-minKelvin)))
}

// dpsToKelvin is the inverse of kelvinToDPS.
func dpsToKelvin(dps float64, minKelvin, maxKelvin int) int {
	return minKelvin + int(math.Round(float64(maxKelvin-minKelvin)*dps/255))
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

var lightModes = map[string]bool{
	"white": true, "colour": true, "scene": true,
	"scene_1": true, "scene_2": true, "scene_3": true, "scene_4": true,
}

func coerceMode(value any) string {
	s, ok := value.(string)
	if !ok {
		return "white"
	}
	lower := strings.ToLower(s)
	if lightModes[lower] {
		return lower
	}
	return "white"
}
