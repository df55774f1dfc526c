package software

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/internal/parallel"
	"github.com/gogpu/raydemo/internal/tracer"
)

// DefaultMaxDimension caps software render targets.
const DefaultMaxDimension = 4096

// ErrNotConfigured is returned by Draw and Snapshot before Configure or
// after Destroy.
var ErrNotConfigured = errors.New("software: renderer not configured")

// RayRenderer path-traces the sphere scene into an RGBA image.
type RayRenderer struct {
	uniform []byte
	camera  []byte
	scene   []byte

	img    *image.RGBA
	last   *tracer.Frame
	pool   *parallel.WorkerPool
	maxDim int
}

var (
	_ raydemo.Backend     = (*RayRenderer)(nil)
	_ raydemo.Snapshotter = (*RayRenderer)(nil)
	_ raydemo.Picker      = (*RayRenderer)(nil)
	_ raydemo.Limiter     = (*RayRenderer)(nil)
)

// NewRayRenderer creates a renderer with the given number of tracing
// workers. Zero or negative uses GOMAXPROCS.
func NewRayRenderer(workers int) *RayRenderer {
	return &RayRenderer{
		pool:   parallel.NewWorkerPool(workers),
		maxDim: DefaultMaxDimension,
	}
}

// Configure allocates the output image.
func (r *RayRenderer) Configure(width, height int) error {
	if width <= 0 || height <= 0 || width > r.maxDim || height > r.maxDim {
		return fmt.Errorf("%w: %dx%d", raydemo.ErrInvalidSize, width, height)
	}
	if r.img != nil && r.img.Rect.Dx() == width && r.img.Rect.Dy() == height {
		return nil
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// WriteBuffer stores a copy of data for the next Draw.
func (r *RayRenderer) WriteBuffer(id raydemo.BufferID, data []byte) error {
	buf := append([]byte(nil), data...)
	switch id {
	case raydemo.BufferUniform:
		r.uniform = buf
	case raydemo.BufferCamera:
		r.camera = buf
	case raydemo.BufferScene:
		r.scene = buf
	default:
		return fmt.Errorf("software ray: unknown buffer %s", id)
	}
	return nil
}

// Draw traces one frame. It returns once every tile is written.
func (r *RayRenderer) Draw() error {
	if r.img == nil {
		return fmt.Errorf("software ray: %w", ErrNotConfigured)
	}
	f, err := tracer.Decode(r.uniform, r.camera, r.scene)
	if err != nil {
		return fmt.Errorf("software ray: %w", err)
	}
	tracer.Render(r.img, f, r.pool)
	r.last = f
	return nil
}

// Snapshot returns a copy of the last frame.
func (r *RayRenderer) Snapshot() (*image.RGBA, error) {
	if r.img == nil {
		return nil, fmt.Errorf("software ray: %w", ErrNotConfigured)
	}
	out := image.NewRGBA(r.img.Rect)
	copy(out.Pix, r.img.Pix)
	return out, nil
}

// Pick returns the index of the sphere visible at pixel (x, y) in the last
// drawn frame, or -1.
func (r *RayRenderer) Pick(x, y int) int {
	if r.last == nil {
		return -1
	}
	return r.last.Pick(x, y)
}

// MaxTextureDimension returns the largest accepted edge.
func (r *RayRenderer) MaxTextureDimension() int { return r.maxDim }

// Destroy stops the worker pool.
func (r *RayRenderer) Destroy() {
	if r.pool != nil {
		r.pool.Close()
	}
	r.img = nil
	r.last = nil
}
