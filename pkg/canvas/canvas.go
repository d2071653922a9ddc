// Package canvas is a freehand drawing surface with a bucket tool. It owns a
// paint.Buffer, records strokes, and hands the buffer to the fill engine.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"github.com/Fepozopo/canvasfill/pkg/paint"
)

var (
	// ErrInvalidSize is returned by New for non-positive dimensions.
	ErrInvalidSize = errors.New("canvas: width and height must be positive")
	// ErrUnknownEvent is returned by On for events the canvas never fires.
	ErrUnknownEvent = errors.New("canvas: unknown event")
)

// Default settings applied by New when an option is left zero.
var (
	DefaultBackground  = color.NRGBA{255, 255, 255, 255}
	DefaultStrokeColor = color.NRGBA{0, 0, 0, 255}
)

// DefaultLineWidth is the stroke width in pixels when none is given.
const DefaultLineWidth = 5

// Options configures a new Canvas.
type Options struct {
	Width  int
	Height int
	// Background is the initial and saved background color. The zero value
	// selects DefaultBackground.
	Background color.NRGBA
	// StrokeColor is used for strokes and the bucket tool. The zero value
	// selects DefaultStrokeColor.
	StrokeColor     color.NRGBA
	LineWidth       int
	BucketTolerance int
	Strategy        paint.Strategy
	// Disabled starts the canvas with drawing mode off.
	Disabled bool
}

// Canvas is safe for concurrent use. Every buffer access, fills included,
// holds the canvas lock for its whole duration.
type Canvas struct {
	mu  sync.Mutex
	buf *paint.Buffer

	background      color.NRGBA
	strokeColor     color.NRGBA
	bucketColor     color.NRGBA
	bucketTolerance paint.Tolerance
	bucketEnabled   bool
	drawingEnabled  bool
	lineWidth       int
	strategy        paint.Strategy

	strokes  []Stroke
	drawing  bool
	restored bool
	dirty    bool

	events eventTable
	damage image.Rectangle
}

// New creates a canvas painted with its background color.
func New(opts Options) (*Canvas, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	buf, err := paint.NewBuffer(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	if opts.BucketTolerance < 0 {
		return nil, fmt.Errorf("canvas: %w: %d", paint.ErrInvalidTolerance, opts.BucketTolerance)
	}
	bg := opts.Background
	if bg == (color.NRGBA{}) {
		bg = DefaultBackground
	}
	stroke := opts.StrokeColor
	if stroke == (color.NRGBA{}) {
		stroke = DefaultStrokeColor
	}
	lw := opts.LineWidth
	if lw <= 0 {
		lw = DefaultLineWidth
	}
	c := &Canvas{
		buf:             buf,
		background:      paint.Opaque(bg),
		strokeColor:     paint.Opaque(stroke),
		bucketColor:     paint.Opaque(stroke),
		bucketTolerance: paint.Tolerance(opts.BucketTolerance),
		drawingEnabled:  !opts.Disabled,
		lineWidth:       lw,
		strategy:        opts.Strategy,
	}
	c.buf.Clear(c.background)
	return c, nil
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.buf.Width, c.buf.Height
}

// Background returns the saved background color.
func (c *Canvas) Background() color.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.background
}

// SetBackground repaints the whole canvas with col. When save is true col
// also becomes the color Clear restores.
func (c *Canvas) SetBackground(col color.NRGBA, save bool) {
	col = paint.Opaque(col)
	c.mu.Lock()
	if save {
		c.background = col
	}
	c.buf.Clear(col)
	c.mu.Unlock()
}

// SetLineWidth sets the stroke width in pixels. Non-positive widths are
// ignored.
func (c *Canvas) SetLineWidth(px int) {
	if px <= 0 {
		Logger().Warn("ignoring line width", "width", px)
		return
	}
	c.mu.Lock()
	c.lineWidth = px
	c.mu.Unlock()
}

// LineWidth returns the stroke width in pixels.
func (c *Canvas) LineWidth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lineWidth
}

// SetStrokeColor sets the color of new strokes.
func (c *Canvas) SetStrokeColor(col color.NRGBA) {
	c.mu.Lock()
	c.strokeColor = paint.Opaque(col)
	c.mu.Unlock()
}

// StrokeColor returns the color of new strokes.
func (c *Canvas) StrokeColor() color.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strokeColor
}

// SetDrawingColor sets both the stroke and the bucket color.
func (c *Canvas) SetDrawingColor(col color.NRGBA) {
	col = paint.Opaque(col)
	c.mu.Lock()
	c.strokeColor = col
	c.bucketColor = col
	c.mu.Unlock()
}

// SetStrategy selects how the fill engine queues work for the next rows.
func (c *Canvas) SetStrategy(s paint.Strategy) {
	c.mu.Lock()
	c.strategy = s
	c.mu.Unlock()
}

// Strategy returns the fill strategy.
func (c *Canvas) Strategy() paint.Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy
}

// BucketConfig updates the bucket tool. Nil fields are left unchanged.
type BucketConfig struct {
	Color     *color.NRGBA
	Tolerance *int
}

// ConfigBucketTool applies cfg. A negative tolerance is rejected and nothing
// is changed.
func (c *Canvas) ConfigBucketTool(cfg BucketConfig) error {
	if cfg.Tolerance != nil {
		if err := paint.Tolerance(*cfg.Tolerance).Validate(); err != nil {
			return fmt.Errorf("canvas: bucket tool: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.Color != nil {
		c.bucketColor = paint.Opaque(*cfg.Color)
	}
	if cfg.Tolerance != nil {
		c.bucketTolerance = paint.Tolerance(*cfg.Tolerance)
	}
	return nil
}

// Bucket returns the bucket color and tolerance.
func (c *Canvas) Bucket() (color.NRGBA, paint.Tolerance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bucketColor, c.bucketTolerance
}

// ToggleBucketTool switches clicks between drawing and filling and returns
// the new state.
func (c *Canvas) ToggleBucketTool() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bucketEnabled = !c.bucketEnabled
	return c.bucketEnabled
}

// BucketToolEnabled reports whether clicks fill.
func (c *Canvas) BucketToolEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bucketEnabled
}

// ToggleDrawingMode enables or disables input and returns the new state.
func (c *Canvas) ToggleDrawingMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawingEnabled = !c.drawingEnabled
	if !c.drawingEnabled {
		c.drawing = false
	}
	return c.drawingEnabled
}

// DrawingModeEnabled reports whether strokes and clicks are accepted.
func (c *Canvas) DrawingModeEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawingEnabled
}

// Pristine reports whether the canvas still shows only its background: no
// stroke recorded, no image restored, and no direct modification.
func (c *Canvas) Pristine() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pristineLocked()
}

func (c *Canvas) pristineLocked() bool {
	return len(c.strokes) == 0 && !c.restored && !c.dirty
}

// MarkDirty disables the pristine shortcut until the next Clear. Hosts that
// change pixels without going through the canvas must call it.
func (c *Canvas) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Modify runs fn with exclusive access to the pixel buffer and marks the
// canvas dirty. fn must not retain buf.
func (c *Canvas) Modify(fn func(buf *paint.Buffer)) {
	c.mu.Lock()
	fn(c.buf)
	c.dirty = true
	c.mu.Unlock()
	c.emit(EventRedraw)
}

// Image returns a copy of the current pixels.
func (c *Canvas) Image() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Clone().NRGBA()
}

// At returns the pixel at (x, y); ok is false outside the canvas.
func (c *Canvas) At(x, y int) (col color.NRGBA, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.ColorAt(x, y)
}

// Clear drops all strokes and repaints the saved background, which makes the
// canvas pristine again.
func (c *Canvas) Clear() {
	c.mu.Lock()
	c.strokes = nil
	c.drawing = false
	c.restored = false
	c.dirty = false
	c.buf.Clear(c.background)
	c.mu.Unlock()
	c.emit(EventRedraw)
}

// Restore draws img over the canvas with its top-left corner at the origin.
// Parts of img outside the canvas are dropped.
func (c *Canvas) Restore(img image.Image) error {
	if img == nil {
		return errors.New("canvas: restore: nil image")
	}
	sb := img.Bounds()
	c.mu.Lock()
	dst := c.buf.NRGBA()
	r := sb.Sub(sb.Min).Intersect(dst.Bounds())
	draw.Draw(dst, r, img, sb.Min, draw.Over)
	c.restored = true
	c.mu.Unlock()
	Logger().Debug("restored image", "width", sb.Dx(), "height", sb.Dy())
	c.emit(EventRedraw)
	return nil
}

// Fill runs the bucket tool at (x, y) with the configured color and
// tolerance.
func (c *Canvas) Fill(ctx context.Context, x, y int) (paint.Outcome, error) {
	col, tol := c.Bucket()
	return c.FillWith(ctx, x, y, col, tol)
}

// FillWith fills the region around (x, y) with col. col is made opaque.
func (c *Canvas) FillWith(ctx context.Context, x, y int, col color.NRGBA, tol paint.Tolerance) (paint.Outcome, error) {
	c.mu.Lock()
	c.damage = image.Rectangle{}
	out, err := paint.Fill(ctx, c.buf, fillHost{c}, paint.Request{
		X:         x,
		Y:         y,
		Color:     paint.Opaque(col),
		Tolerance: tol,
		Strategy:  c.strategy,
	})
	damage := c.damage
	c.mu.Unlock()

	Logger().Debug("fill",
		"x", x, "y", y,
		"color", paint.FormatColor(col),
		"tolerance", int(tol),
		"result", out.Result.String(),
		"writes", out.Writes,
		"iterations", out.Iterations,
		"maxPending", out.MaxPending,
		"guard", out.GuardTripped)
	if out.GuardTripped {
		Logger().Warn("fill stopped by work guard", "x", x, "y", y, "iterations", out.Iterations)
	}
	// a canceled fill may have written whole spans already
	if !damage.Empty() {
		c.emit(EventFill)
		c.emit(EventRedraw)
	}
	if err != nil {
		return out, fmt.Errorf("canvas: fill at (%d,%d): %w", x, y, err)
	}
	return out, nil
}

// Click is a primary-button press at (x, y): a fill when the bucket tool is
// on, otherwise a single-point stroke.
func (c *Canvas) Click(ctx context.Context, x, y int) error {
	c.mu.Lock()
	enabled, bucket := c.drawingEnabled, c.bucketEnabled
	c.mu.Unlock()
	if !enabled {
		return nil
	}
	if bucket {
		_, err := c.Fill(ctx, x, y)
		return err
	}
	c.StrokeStart(x, y)
	c.StrokeEnd()
	return nil
}

// fillHost exposes the canvas to the fill engine. Its methods run while the
// canvas lock is held by FillWith.
type fillHost struct{ c *Canvas }

func (h fillHost) Pristine() bool { return h.c.pristineLocked() }

func (h fillHost) Invalidate(r image.Rectangle) { h.c.damage = h.c.damage.Union(r) }
