package paint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	// ErrOutOfBounds is returned when a coordinate falls outside the buffer.
	ErrOutOfBounds = errors.New("paint: coordinate out of bounds")
	// ErrInvalidTolerance is returned for negative tolerances.
	ErrInvalidTolerance = errors.New("paint: invalid tolerance")
	// ErrEmptyBuffer is returned for nil or zero-sized buffers.
	ErrEmptyBuffer = errors.New("paint: empty buffer")
	// ErrBufferSize is returned when Pix does not hold Width*Height*4 bytes.
	ErrBufferSize = errors.New("paint: pixel data does not match dimensions")
)

// Buffer is a row-major RGBA pixel buffer, 4 bytes per pixel.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a transparent black buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBuffer, width, height)
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// NewBufferFrom wraps existing pixel data without copying it.
func NewBufferFrom(width, height int, pix []uint8) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// BufferFromImage copies img into a new buffer whose origin is img's
// top-left corner.
func BufferFromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, ErrEmptyBuffer
	}
	src := toNRGBA(img)
	r := src.Bounds()
	b, err := NewBuffer(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	rowLen := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		si := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(b.Pix[y*rowLen:(y+1)*rowLen], src.Pix[si:si+rowLen])
	}
	return b, nil
}

// Validate checks that the buffer is non-empty and consistent.
func (b *Buffer) Validate() error {
	if b == nil || b.Width <= 0 || b.Height <= 0 {
		return ErrEmptyBuffer
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrBufferSize, len(b.Pix), b.Width*b.Height*4)
	}
	return nil
}

// Bounds returns the rectangle covered by the buffer.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// In reports whether (x, y) addresses a pixel of the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

func (b *Buffer) offset(x, y int) int {
	return (x + y*b.Width) * 4
}

// ColorAt returns the pixel at (x, y). ok is false outside the buffer, in
// which case the returned color is meaningless and must not be compared.
func (b *Buffer) ColorAt(x, y int) (c color.NRGBA, ok bool) {
	if !b.In(x, y) {
		return color.NRGBA{}, false
	}
	i := b.offset(x, y)
	p := b.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}, true
}

// SetColor writes c at (x, y). Writes outside the buffer are rejected.
func (b *Buffer) SetColor(x, y int, c color.NRGBA) error {
	if !b.In(x, y) {
		return fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, x, y, b.Width, b.Height)
	}
	b.set(b.offset(x, y), c)
	return nil
}

func (b *Buffer) set(i int, c color.NRGBA) {
	p := b.Pix[i : i+4 : i+4]
	p[0] = c.R
	p[1] = c.G
	p[2] = c.B
	p[3] = c.A
}

// Clear paints every pixel with c.
func (b *Buffer) Clear(c color.NRGBA) {
	for i := 0; i+4 <= len(b.Pix); i += 4 {
		b.set(i, c)
	}
}

// FillRect paints the part of r that lies inside the buffer.
func (b *Buffer) FillRect(r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.set(b.offset(x, y), c)
		}
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// NRGBA returns an image view that shares the buffer's pixel data.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   b.Bounds(),
	}
}

// Uniform reports whether every pixel equals the first one, and returns it.
func (b *Buffer) Uniform() (color.NRGBA, bool) {
	first, ok := b.ColorAt(0, 0)
	if !ok {
		return color.NRGBA{}, false
	}
	for i := 4; i+4 <= len(b.Pix); i += 4 {
		if b.Pix[i] != first.R || b.Pix[i+1] != first.G || b.Pix[i+2] != first.B || b.Pix[i+3] != first.A {
			return first, false
		}
	}
	return first, true
}

// toNRGBA converts any image.Image to *image.NRGBA (non-premultiplied RGBA).
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	r := src.Bounds()
	out := image.NewNRGBA(r)
	idx := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix[idx+0] = c.R
			out.Pix[idx+1] = c.G
			out.Pix[idx+2] = c.B
			out.Pix[idx+3] = c.A
			idx += 4
		}
	}
	return out
}
