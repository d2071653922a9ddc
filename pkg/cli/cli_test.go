package cli

import (
	"bytes"
	"context"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fepozopo/canvasfill/pkg/canvas"
)

func runSession(t *testing.T, c *canvas.Canvas, input string) (stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	s := NewSession(c, strings.NewReader(input), &out, &errOut)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String(), errOut.String()
}

func TestSessionInlineCommand(t *testing.T) {
	c := newTestCanvas(t, 30, 30)
	out, errOut := runSession(t, c, "/fill 3 3 red\n/info\nq\n")
	if errOut != "" {
		t.Fatalf("unexpected errors: %s", errOut)
	}
	if !strings.Contains(out, "fill replaced") {
		t.Fatalf("expected pristine replacement report:\n%s", out)
	}
	if !strings.Contains(out, "Exiting...") {
		t.Fatalf("expected exit message:\n%s", out)
	}
	if got := at(t, c, 29, 29); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("expected the whole canvas red, got %v", got)
	}
}

func TestSessionLineTakesAllPoints(t *testing.T) {
	c := newTestCanvas(t, 30, 30)
	runSession(t, c, "/line 2,2 20,2 20,20\n")
	strokes := c.Strokes()
	if len(strokes) != 1 || len(strokes[0].Points) != 3 {
		t.Fatalf("expected one stroke with 3 points, got %+v", strokes)
	}
}

func TestSessionPromptsForArgs(t *testing.T) {
	c := newTestCanvas(t, 30, 30)
	// select by number, then x, y, color and an empty tolerance
	input := "/\n1\n4\n5\nblue\n\nq\n"
	out, errOut := runSession(t, c, input)
	if errOut != "" {
		t.Fatalf("unexpected errors: %s", errOut)
	}
	for _, want := range []string{"1) fill", "x (int): ", "color (color): ", "usage: fill"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if got := at(t, c, 4, 5); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("expected blue fill, got %v", got)
	}
}

func TestSessionSelectionByName(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	out, _ := runSession(t, c, "/\ncle\n/\n\n")
	if !strings.Contains(out, "cleared") || !strings.Contains(out, "selection cancelled") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSessionReportsErrors(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	out, errOut := runSession(t, c, "/fill 1\n/zzz\n/fill 50 50\nx\n")
	for _, want := range []string{"missing required parameter: y", "unknown command: zzz", "out of bounds"} {
		if !strings.Contains(errOut, want) {
			t.Fatalf("stderr missing %q:\n%s", want, errOut)
		}
	}
	if !strings.Contains(out, "unknown key 'x'") {
		t.Fatalf("expected unknown key message:\n%s", out)
	}
}

func TestSessionSaveAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.png")
	c := newTestCanvas(t, 16, 12)
	_, errOut := runSession(t, c, "/background lime\ns "+path+"\n")
	if errOut != "" {
		t.Fatalf("save failed: %s", errOut)
	}

	img, format, err := LoadImage(path)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Fatalf("unexpected saved image %s %v", format, img.Bounds())
	}

	d := newTestCanvas(t, 20, 20)
	out, errOut := runSession(t, d, "o "+path+"\n")
	if errOut != "" {
		t.Fatalf("open failed: %s", errOut)
	}
	if !strings.Contains(out, "Format: PNG, Width: 16, Height: 12") {
		t.Fatalf("expected image info:\n%s", out)
	}
	if got := at(t, d, 15, 11); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Fatalf("expected opened pixels, got %v", got)
	}
	if got := at(t, d, 19, 19); got != canvas.DefaultBackground {
		t.Fatalf("expected background beyond the opened image, got %v", got)
	}
	if d.Pristine() {
		t.Fatalf("opened canvas must not be pristine")
	}
}

func TestSessionOpenMissingFile(t *testing.T) {
	c := newTestCanvas(t, 4, 4)
	_, errOut := runSession(t, c, "o /does/not/exist.png\n")
	if !strings.Contains(errOut, "failed to read image") {
		t.Fatalf("expected read error, got %q", errOut)
	}
}

// interruptAfter reports no error for its first n Err calls and Canceled after.
type interruptAfter struct {
	context.Context
	n, calls int
}

func (c *interruptAfter) Err() error {
	c.calls++
	if c.calls > c.n {
		return context.Canceled
	}
	return nil
}

func TestSessionPreviewsInterruptedFill(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "inline")
	c := newTestCanvas(t, 20, 120)
	c.MarkDirty()

	var out, errOut bytes.Buffer
	s := NewSession(c, strings.NewReader("/fill 0 0 red 0\n"), &out, &errOut)
	s.Preview = true
	if err := s.Run(&interruptAfter{Context: context.Background(), n: 1}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "context canceled") {
		t.Fatalf("expected the cancellation to be reported, got %q", errOut.String())
	}
	if !strings.Contains(out.String(), "\x1b]1337;File=") {
		t.Fatalf("expected a preview of the partial fill")
	}
	if got := at(t, c, 0, 0); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("expected the seed row painted, got %v", got)
	}
	if got := at(t, c, 0, 119); got != canvas.DefaultBackground {
		t.Fatalf("expected the last row untouched, got %v", got)
	}
}
