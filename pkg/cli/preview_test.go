package cli

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 7), uint8(y * 13), uint8(x ^ y), 255})
		}
	}
	return img
}

// TestPreviewInlineSequence verifies that PreviewImage emits an inline-image OSC
// sequence carrying a PNG when an inline-capable backend is selected.
func TestPreviewInlineSequence(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "inline")

	var buf bytes.Buffer
	if err := PreviewImage(&buf, testImage(2, 2)); err != nil {
		t.Fatalf("PreviewImage error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1b]1337;File=") {
		t.Fatalf("expected inline 1337 sequence, got: %q", out)
	}

	// payload sits between ':' and BEL
	idx := strings.Index(out, ":")
	end := strings.Index(out, "\a")
	if idx < 0 || end < idx {
		t.Fatalf("malformed sequence: %q", out)
	}
	dec, err := base64.StdEncoding.DecodeString(out[idx+1 : end])
	if err != nil {
		t.Fatalf("base64 decode failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(dec))
	if err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("small images must not be scaled, got %v", b)
	}
}

func TestPreviewKittyChunks(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "kitty")

	var buf bytes.Buffer
	if err := PreviewImage(&buf, testImage(300, 200)); err != nil {
		t.Fatalf("PreviewImage error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1b_Ga=T,f=100,") {
		t.Fatalf("expected kitty transmit header, got %q", out[:min(len(out), 40)])
	}
	if strings.Count(out, "\x1b_G") < 2 {
		t.Fatalf("expected a chunked transmission")
	}
	if !strings.Contains(out, "m=1;") || !strings.Contains(out, "\x1b_Gm=0;") {
		t.Fatalf("expected continuation flags in the chunks")
	}
}

func TestPreviewNoBackend(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "")
	t.Setenv("KITTY_WINDOW_ID", "")
	t.Setenv("KONSOLE_VERSION", "")
	t.Setenv("ITERM_SESSION_ID", "")
	t.Setenv("TERM_PROGRAM", "")
	t.Setenv("TERM", "dumb")
	if err := PreviewImage(&bytes.Buffer{}, testImage(1, 1)); err == nil {
		t.Fatalf("expected error without a supported terminal")
	}
	if err := PreviewImage(&bytes.Buffer{}, nil); err == nil {
		t.Fatalf("expected error for nil image")
	}
}

func TestComputePreviewSize(t *testing.T) {
	tests := []struct {
		w, h, cols, rows int
		want             PreviewSize
	}{
		// square canvas limited by half the terminal height
		{500, 500, 80, 48, PreviewSize{Cols: 48, Rows: 24, PixelWidth: 384, PixelHeight: 384}},
		// wide canvas limited by the column cap
		{2000, 500, 0, 0, PreviewSize{Cols: 80, Rows: 10, PixelWidth: 640, PixelHeight: 160}},
		// tiny images are never scaled up
		{2, 2, 0, 0, PreviewSize{Cols: minCols, Rows: minRows, PixelWidth: 2, PixelHeight: 2}},
	}
	for _, tc := range tests {
		if got := computePreviewSize(tc.w, tc.h, tc.cols, tc.rows); got != tc.want {
			t.Fatalf("computePreviewSize(%d,%d,%d,%d) = %+v, want %+v", tc.w, tc.h, tc.cols, tc.rows, got, tc.want)
		}
	}
}
