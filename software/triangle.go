package software

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/gogpu/raydemo"
)

// TriangleRenderer rasterizes the spinning triangle with gg.
type TriangleRenderer struct {
	dc      *gg.Context
	uniform raydemo.TriangleUniform
	img     *image.RGBA
}

var (
	_ raydemo.Backend     = (*TriangleRenderer)(nil)
	_ raydemo.Snapshotter = (*TriangleRenderer)(nil)
	_ raydemo.Limiter     = (*TriangleRenderer)(nil)
)

// NewTriangleRenderer creates an unconfigured renderer.
func NewTriangleRenderer() *TriangleRenderer {
	return &TriangleRenderer{}
}

// Configure sizes the drawing context.
func (r *TriangleRenderer) Configure(width, height int) error {
	if width <= 0 || height <= 0 || width > DefaultMaxDimension || height > DefaultMaxDimension {
		return fmt.Errorf("%w: %dx%d", raydemo.ErrInvalidSize, width, height)
	}
	if r.dc == nil {
		r.dc = gg.NewContext(width, height)
		return nil
	}
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("software triangle: %w", err)
	}
	return nil
}

// WriteBuffer accepts the triangle uniform only.
func (r *TriangleRenderer) WriteBuffer(id raydemo.BufferID, data []byte) error {
	if id != raydemo.BufferTriangle {
		return fmt.Errorf("software triangle: unknown buffer %s", id)
	}
	r.uniform = raydemo.DecodeTriangleUniform(data)
	return nil
}

// Draw clears the canvas and fills the transformed triangle.
func (r *TriangleRenderer) Draw() error {
	if r.dc == nil {
		return fmt.Errorf("software triangle: %w", ErrNotConfigured)
	}
	w, h := float64(r.dc.Width()), float64(r.dc.Height())

	r.dc.ClearWithColor(gg.FromColor(raydemo.TriangleClear))
	r.dc.SetColor(raydemo.TriangleFill)
	for i, v := range r.uniform.Vertices() {
		x := (float64(v[0]) + 1) / 2 * w
		y := (1 - float64(v[1])) / 2 * h
		if i == 0 {
			r.dc.MoveTo(x, y)
		} else {
			r.dc.LineTo(x, y)
		}
	}
	r.dc.ClosePath()
	if err := r.dc.Fill(); err != nil {
		return fmt.Errorf("software triangle: fill: %w", err)
	}
	r.img = toRGBA(r.dc.Image())
	return nil
}

// Snapshot returns a copy of the last drawn frame.
func (r *TriangleRenderer) Snapshot() (*image.RGBA, error) {
	if r.img == nil {
		return nil, fmt.Errorf("software triangle: %w", ErrNotConfigured)
	}
	out := image.NewRGBA(r.img.Rect)
	copy(out.Pix, r.img.Pix)
	return out, nil
}

// MaxTextureDimension returns the largest accepted edge.
func (r *TriangleRenderer) MaxTextureDimension() int { return DefaultMaxDimension }

// Destroy releases the drawing context.
func (r *TriangleRenderer) Destroy() {
	if r.dc != nil {
		if err := r.dc.Close(); err != nil {
			raydemo.Logger().Warn("software triangle: close context", "err", err)
		}
		r.dc = nil
	}
	r.img = nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
