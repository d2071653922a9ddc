package paint

import (
	"errors"
	"image/color"
	"testing"
)

func TestColorsEqualExact(t *testing.T) {
	a := color.NRGBA{0, 0, 0, 255}
	b := color.NRGBA{10, 10, 10, 255}
	if !ColorsEqual(a, a, Exact) {
		t.Fatalf("expected color to equal itself")
	}
	if ColorsEqual(a, b, Exact) {
		t.Fatalf("expected %v and %v to differ", a, b)
	}
	// alpha counts without tolerance
	if ColorsEqual(color.NRGBA{1, 2, 3, 255}, color.NRGBA{1, 2, 3, 254}, Exact) {
		t.Fatalf("expected alpha difference to break exact match")
	}
}

func TestColorsEqualTolerance(t *testing.T) {
	b := color.NRGBA{10, 10, 10, 255}
	c := color.NRGBA{12, 12, 12, 255}
	if !ColorsEqual(b, c, 2) {
		t.Fatalf("expected %v and %v to match with tolerance 2", b, c)
	}
	if ColorsEqual(b, c, 1) {
		t.Fatalf("expected %v and %v to differ with tolerance 1", b, c)
	}
	// one channel over the limit is enough to fail
	if ColorsEqual(color.NRGBA{10, 10, 10, 255}, color.NRGBA{10, 10, 20, 255}, 9) {
		t.Fatalf("expected blue channel to exceed tolerance")
	}
	// alpha is ignored under tolerance
	if !ColorsEqual(color.NRGBA{10, 10, 10, 0}, color.NRGBA{10, 10, 10, 255}, 1) {
		t.Fatalf("expected alpha to be ignored with tolerance")
	}
	// symmetric
	if ColorsEqual(b, c, 2) != ColorsEqual(c, b, 2) {
		t.Fatalf("expected ColorsEqual to be symmetric")
	}
}

func TestToleranceValidate(t *testing.T) {
	if err := Tolerance(0).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Tolerance(-1).Validate(); !errors.Is(err, ErrInvalidTolerance) {
		t.Fatalf("expected ErrInvalidTolerance, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#f0a":          {0xff, 0x00, 0xaa, 0xff},
		"#f0a8":         {0xff, 0x00, 0xaa, 0x88},
		"#102030":       {0x10, 0x20, 0x30, 0xff},
		"#10203040":     {0x10, 0x20, 0x30, 0x40},
		"ff00ff":        {255, 0, 255, 255},
		"255,0,255":     {255, 0, 255, 255},
		" 1, 2, 3, 4 ": {1, 2, 3, 4},
		"Magenta":       {255, 0, 255, 255},
		"white":         {255, 255, 255, 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "nope", "1,2", "1,2,300", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected ParseColor(%q) to fail", bad)
		}
	}
}

func TestOpaqueAndFormat(t *testing.T) {
	c := Opaque(color.NRGBA{1, 2, 3, 4})
	if c.A != 255 {
		t.Fatalf("expected alpha 255, got %d", c.A)
	}
	if s := FormatColor(c); s != "#010203ff" {
		t.Fatalf("unexpected format %q", s)
	}
}
