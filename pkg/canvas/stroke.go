package canvas

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Fepozopo/canvasfill/pkg/paint"
)

// Stroke is one press-move-release gesture.
type Stroke struct {
	Points []image.Point
	Color  color.NRGBA
	Width  int
}

// StrokeStart begins a stroke at (x, y) and plots its first point. It does
// nothing while drawing mode is off.
func (c *Canvas) StrokeStart(x, y int) {
	c.mu.Lock()
	if !c.drawingEnabled {
		c.mu.Unlock()
		return
	}
	c.drawing = true
	s := Stroke{
		Points: []image.Point{{x, y}},
		Color:  c.strokeColor,
		Width:  c.lineWidth,
	}
	c.strokes = append(c.strokes, s)
	plotStroke(c.buf, s, 0)
	c.mu.Unlock()

	c.emit(EventStrokeStart)
	c.redraw(false)
}

// StrokeMove extends the current stroke to (x, y). It is ignored when no
// stroke is in progress.
func (c *Canvas) StrokeMove(x, y int) {
	c.mu.Lock()
	if !c.drawing || len(c.strokes) == 0 {
		c.mu.Unlock()
		return
	}
	s := &c.strokes[len(c.strokes)-1]
	s.Points = append(s.Points, image.Point{x, y})
	plotStroke(c.buf, *s, len(s.Points)-1)
	c.mu.Unlock()

	c.redraw(true)
}

// StrokeEnd finishes the current stroke.
func (c *Canvas) StrokeEnd() {
	c.mu.Lock()
	was := c.drawing
	c.drawing = false
	c.mu.Unlock()
	if was {
		c.emit(EventStrokeEnd)
	}
}

// DrawPolyline records pts as one stroke, as if dragged from the first
// point to the last.
func (c *Canvas) DrawPolyline(pts ...image.Point) {
	if len(pts) == 0 {
		return
	}
	c.StrokeStart(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.StrokeMove(p.X, p.Y)
	}
	c.StrokeEnd()
}

// Strokes returns a copy of the recorded strokes.
func (c *Canvas) Strokes() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stroke, len(c.strokes))
	for i, s := range c.strokes {
		s.Points = append([]image.Point(nil), s.Points...)
		out[i] = s
	}
	return out
}

// Redraw plots the recorded strokes again over the current pixels: all of
// them, or only the last one.
func (c *Canvas) Redraw(all bool) {
	c.mu.Lock()
	strokes := c.strokes
	if !all && len(strokes) > 0 {
		strokes = strokes[len(strokes)-1:]
	}
	for _, s := range strokes {
		for i := range s.Points {
			plotStroke(c.buf, s, i)
		}
	}
	c.mu.Unlock()
	c.redraw(false)
}

// plotStroke draws point i of s: a square dot for the first point, or the
// segment from point i-1 for the others.
func plotStroke(buf *paint.Buffer, s Stroke, i int) {
	p := s.Points[i]
	if i == 0 {
		stamp(buf, p, s.Width, s.Color)
		return
	}
	line(buf, s.Points[i-1], p, s.Width, s.Color)
}

// line walks from a to b with Bresenham's algorithm, stamping the brush at
// every step.
func line(buf *paint.Buffer, a, b image.Point, width int, col color.NRGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		stamp(buf, image.Point{x, y}, width, col)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// stamp paints a width×width square centered on p, clipped to the buffer.
func stamp(buf *paint.Buffer, p image.Point, width int, col color.NRGBA) {
	half := width / 2
	r := image.Rect(p.X-half, p.Y-half, p.X-half+width, p.Y-half+width)
	dst := buf.NRGBA()
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
