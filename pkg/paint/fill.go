// Package paint holds the pixel buffer, the color matching rule and the
// bucket fill engine. Nothing in it keeps state between calls.
package paint

import (
	"context"
	"fmt"
	"image"
	"image/color"
)

// Strategy selects how the engine schedules neighboring rows.
type Strategy int

const (
	// StrategyPixel pushes one work item for every matching pixel above and
	// below a painted span. Rows are rescanned often; this is the default.
	StrategyPixel Strategy = iota
	// StrategySpan pushes one work item per contiguous matching run in the
	// rows above and below a painted span.
	StrategySpan
)

func (s Strategy) String() string {
	switch s {
	case StrategyPixel:
		return "pixel"
	case StrategySpan:
		return "span"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy is the inverse of Strategy.String. The empty string selects
// StrategyPixel.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "pixel":
		return StrategyPixel, nil
	case "span":
		return StrategySpan, nil
	}
	return StrategyPixel, fmt.Errorf("paint: unknown strategy %q", s)
}

// Result says how a fill call ended.
type Result int

const (
	// Filled means the scanline expansion ran, possibly stopped by the guard.
	Filled Result = iota
	// AlreadyFilled means the seed already had the requested color.
	AlreadyFilled
	// Replaced means the host was pristine and the whole buffer was repainted.
	Replaced
	// Canceled means the context ended between two work items.
	Canceled
)

func (r Result) String() string {
	switch r {
	case Filled:
		return "filled"
	case AlreadyFilled:
		return "already-filled"
	case Replaced:
		return "replaced"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Host is the drawing surface that owns a buffer.
type Host interface {
	// Pristine reports whether nothing has been drawn on or restored into
	// the buffer since it was painted with its background.
	Pristine() bool
	// Invalidate is called once per fill with the rectangle that changed.
	Invalidate(r image.Rectangle)
}

// Request describes one bucket fill.
type Request struct {
	X, Y      int
	Color     color.NRGBA
	Tolerance Tolerance
	Strategy  Strategy
}

// Outcome reports what a fill did.
type Outcome struct {
	Result Result
	// Writes counts pixel writes. Stale work items may repaint a pixel, so
	// this can exceed the number of distinct pixels changed.
	Writes     int
	Iterations int
	MaxPending int
	// GuardTripped is set when the pending work stack outgrew the buffer's
	// pixel count and the fill stopped early.
	GuardTripped bool
	Changed      image.Rectangle
}

// cancelCheckEvery is how many work items run between context checks.
const cancelCheckEvery = 64

type point struct{ x, y int }

// Fill recolors the region connected to (req.X, req.Y) whose pixels match
// the seed color within req.Tolerance. buf is modified in place.
//
// If host reports a pristine buffer the whole buffer is repainted instead.
// host may be nil. Invalidate is called at most once, and only when pixels
// were written.
func Fill(ctx context.Context, buf *Buffer, host Host, req Request) (Outcome, error) {
	if err := buf.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := req.Tolerance.Validate(); err != nil {
		return Outcome{}, err
	}
	if !buf.In(req.X, req.Y) {
		return Outcome{}, fmt.Errorf("%w: seed (%d,%d) not in %dx%d", ErrOutOfBounds, req.X, req.Y, buf.Width, buf.Height)
	}

	if host != nil && host.Pristine() {
		buf.Clear(req.Color)
		out := Outcome{
			Result:  Replaced,
			Writes:  buf.Width * buf.Height,
			Changed: buf.Bounds(),
		}
		host.Invalidate(out.Changed)
		return out, nil
	}

	target, _ := buf.ColorAt(req.X, req.Y)
	if ColorsEqual(target, req.Color, req.Tolerance) {
		return Outcome{Result: AlreadyFilled}, nil
	}

	f := newFiller(buf, target, req)
	err := f.run(ctx, point{req.X, req.Y}, req.Strategy)
	if host != nil && !f.out.Changed.Empty() {
		host.Invalidate(f.out.Changed)
	}
	return f.out, err
}

type filler struct {
	buf    *Buffer
	target color.NRGBA
	color  color.NRGBA
	tol    Tolerance
	limit  int
	stack  []point
	out    Outcome
}

// newFiller stops the fill once more work items are pending than the
// buffer has pixels.
func newFiller(buf *Buffer, target color.NRGBA, req Request) *filler {
	return &filler{
		buf:    buf,
		target: target,
		color:  req.Color,
		tol:    req.Tolerance,
		limit:  buf.Width * buf.Height,
	}
}

// matches compares against the target captured before any write. Pixels
// outside the buffer never match.
func (f *filler) matches(x, y int) bool {
	c, ok := f.buf.ColorAt(x, y)
	return ok && ColorsEqual(c, f.target, f.tol)
}

func (f *filler) run(ctx context.Context, seed point, strategy Strategy) error {
	f.stack = append(f.stack[:0], seed)
	f.out.MaxPending = 1
	for len(f.stack) > 0 {
		if len(f.stack) > f.limit {
			f.out.GuardTripped = true
			break
		}
		if f.out.Iterations%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				f.out.Result = Canceled
				return fmt.Errorf("paint: fill interrupted after %d items: %w", f.out.Iterations, err)
			}
		}
		n := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		f.out.Iterations++

		west, east := n.x, n.x
		for f.matches(west-1, n.y) {
			west--
		}
		for f.matches(east+1, n.y) {
			east++
		}

		if strategy == StrategySpan {
			f.paintSpan(west, east, n.y)
			f.pushRuns(west, east, n.y+1)
			f.pushRuns(west, east, n.y-1)
		} else {
			for x := west; x <= east; x++ {
				f.paint(x, n.y)
				if f.matches(x, n.y+1) {
					f.push(point{x, n.y + 1})
				}
				if f.matches(x, n.y-1) {
					f.push(point{x, n.y - 1})
				}
			}
		}
		f.out.Changed = f.out.Changed.Union(image.Rect(west, n.y, east+1, n.y+1))
	}
	f.out.Result = Filled
	return nil
}

// paint writes one pixel. x and y always come from a span whose pixels were
// bounds-checked by matches, or from the in-bounds seed.
func (f *filler) paint(x, y int) {
	f.buf.set(f.buf.offset(x, y), f.color)
	f.out.Writes++
}

func (f *filler) paintSpan(west, east, y int) {
	for x := west; x <= east; x++ {
		f.paint(x, y)
	}
}

func (f *filler) push(p point) {
	f.stack = append(f.stack, p)
	if len(f.stack) > f.out.MaxPending {
		f.out.MaxPending = len(f.stack)
	}
}

// pushRuns pushes the first pixel of every matching run in [west, east] on
// row y.
func (f *filler) pushRuns(west, east, y int) {
	inRun := false
	for x := west; x <= east; x++ {
		if f.matches(x, y) {
			if !inRun {
				f.push(point{x, y})
				inRun = true
			}
			continue
		}
		inRun = false
	}
}
