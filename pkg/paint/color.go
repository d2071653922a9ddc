package paint

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Tolerance is the largest per-channel difference two colors may have and
// still be treated as equal during a fill. Zero means exact match.
type Tolerance int

// Exact requires every channel, alpha included, to match.
const Exact Tolerance = 0

// Validate rejects negative tolerances.
func (t Tolerance) Validate() error {
	if t < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTolerance, int(t))
	}
	return nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// ColorsEqual reports whether a and b match under tol.
//
// With a positive tolerance only R, G and B are compared and alpha is
// ignored, so partially transparent edge pixels can be absorbed into a
// region. Without one all four channels must be identical.
func ColorsEqual(a, b color.NRGBA, tol Tolerance) bool {
	if tol > 0 {
		t := int(tol)
		return absDiff(a.R, b.R) <= t &&
			absDiff(a.G, b.G) <= t &&
			absDiff(a.B, b.B) <= t
	}
	return a == b
}

// Opaque returns c with its alpha forced to 255.
func Opaque(c color.NRGBA) color.NRGBA {
	c.A = 0xff
	return c
}

var namedColors = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"lime":    {0, 255, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"fuchsia": {255, 0, 255, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"maroon":  {128, 0, 0, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"olive":   {128, 128, 0, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
}

// ParseColor accepts a named color, #rgb, #rgba, #rrggbb, #rrggbbaa, or a
// comma separated "r,g,b" / "r,g,b,a" list of 0..255 values. Missing alpha
// defaults to 255.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.Contains(s, ",") {
		return parseChannelList(s)
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3, 4:
		// expand short form: "f0a" -> "ff00aa"
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func parseChannelList(s string) (color.NRGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: need 3 or 4 channels", s)
	}
	ch := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid channel %q: %w", p, err)
		}
		if v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("channel %d out of range 0..255", v)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// FormatColor renders c as #rrggbbaa.
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
