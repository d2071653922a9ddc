package cli

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/Fepozopo/canvasfill/pkg/canvas"
	"github.com/Fepozopo/canvasfill/pkg/paint"
)

func newTestCanvas(t *testing.T, w, h int) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(canvas.Options{Width: w, Height: h})
	if err != nil {
		t.Fatalf("canvas.New: %v", err)
	}
	return c
}

// apply normalizes args the way the REPL does before running the command.
func apply(t *testing.T, c *canvas.Canvas, name string, args ...string) string {
	t.Helper()
	norm, err := NormalizeArgs(NewMetaStore(Commands), name, args)
	if err != nil {
		t.Fatalf("%s: normalize: %v", name, err)
	}
	msg, err := ApplyCommand(context.Background(), c, name, norm)
	if err != nil {
		t.Fatalf("%s: apply: %v", name, err)
	}
	return msg
}

func at(t *testing.T, c *canvas.Canvas, x, y int) color.NRGBA {
	t.Helper()
	col, ok := c.At(x, y)
	if !ok {
		t.Fatalf("(%d,%d) outside canvas", x, y)
	}
	return col
}

func TestApplyFillInsideSquare(t *testing.T) {
	c := newTestCanvas(t, 500, 500)
	apply(t, c, "line", "100,100 300,100 300,300 100,300 100,100")
	msg := apply(t, c, "fill", "150", "150", "magenta", "0")
	if !strings.HasPrefix(msg, "fill filled:") {
		t.Fatalf("unexpected report %q", msg)
	}
	if got := at(t, c, 150, 150); got != (color.NRGBA{255, 0, 255, 255}) {
		t.Fatalf("expected magenta inside, got %v", got)
	}
	if got := at(t, c, 100, 100); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("expected black border, got %v", got)
	}
	if got := at(t, c, 10, 10); got != canvas.DefaultBackground {
		t.Fatalf("expected background outside, got %v", got)
	}
	msg = apply(t, c, "fill", "150", "150", "magenta")
	if !strings.Contains(msg, paint.AlreadyFilled.String()) {
		t.Fatalf("expected already-filled report, got %q", msg)
	}
}

func TestApplyFillUsesBucketSettings(t *testing.T) {
	c := newTestCanvas(t, 20, 20)
	apply(t, c, "point", "0", "0")
	apply(t, c, "color", "#00ff00")
	apply(t, c, "tolerance", "12")
	apply(t, c, "fill", "10", "10")
	if got := at(t, c, 10, 10); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Fatalf("expected bucket color, got %v", got)
	}
	if _, tol := c.Bucket(); tol != 12 {
		t.Fatalf("expected tolerance 12, got %d", tol)
	}
}

func TestApplyToggles(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	if msg := apply(t, c, "bucket", "on"); msg != "bucket tool on" || !c.BucketToolEnabled() {
		t.Fatalf("bucket on: %q", msg)
	}
	if msg := apply(t, c, "bucket", "on"); msg != "bucket tool on" {
		t.Fatalf("bucket on twice: %q", msg)
	}
	if msg := apply(t, c, "bucket"); msg != "bucket tool off" {
		t.Fatalf("bucket toggle: %q", msg)
	}
	if msg := apply(t, c, "mode", "off"); msg != "drawing mode off" || c.DrawingModeEnabled() {
		t.Fatalf("mode off: %q", msg)
	}
	if msg := apply(t, c, "point", "5", "5"); msg != "drawing mode is off" {
		t.Fatalf("point with drawing off: %q", msg)
	}
	if got := at(t, c, 5, 5); got != canvas.DefaultBackground {
		t.Fatalf("point drawn while drawing mode is off")
	}
	apply(t, c, "strategy", "span")
	if c.Strategy() != paint.StrategySpan {
		t.Fatalf("expected span strategy")
	}
}

func TestApplyBackgroundAndClear(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	apply(t, c, "background", "blue")
	apply(t, c, "point", "5", "5")
	apply(t, c, "background", "red", "false")
	apply(t, c, "clear")
	if got := at(t, c, 5, 5); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("clear should restore the saved background, got %v", got)
	}
	if len(c.Strokes()) != 0 {
		t.Fatalf("clear should drop strokes")
	}
}

func TestApplyInfo(t *testing.T) {
	c := newTestCanvas(t, 50, 40)
	apply(t, c, "width", "9")
	info := apply(t, c, "info")
	for _, want := range []string{"Size: 50x40", "width 9", "tolerance 0, off", "Strategy: pixel", "pristine: true"} {
		if !strings.Contains(info, want) {
			t.Fatalf("info missing %q:\n%s", want, info)
		}
	}
}

func TestApplyCommandErrors(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	ctx := context.Background()
	if _, err := ApplyCommand(ctx, c, "fill", []string{"1", "1"}); err == nil || !strings.Contains(err.Error(), "requires 4 args") {
		t.Fatalf("expected arg count error, got %v", err)
	}
	if _, err := ApplyCommand(ctx, c, "explode", nil); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := ApplyCommand(ctx, c, "fill", []string{"10", "0", "", ""}); err == nil {
		t.Fatalf("expected out of bounds error")
	}
	if _, err := ApplyCommand(ctx, c, "width", []string{"0"}); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := ApplyCommand(ctx, nil, "info", nil); err == nil {
		t.Fatalf("expected error for nil canvas")
	}
}
