package raydemo

import (
	"fmt"
	"image"
)

// BufferID names a buffer slot understood by a backend.
type BufferID int

// Buffers consumed by the two pipelines.
const (
	// BufferUniform holds the ray Uniforms record.
	BufferUniform BufferID = iota
	// BufferCamera holds the serialized OrbitCamera basis.
	BufferCamera
	// BufferScene holds the packed sphere records.
	BufferScene
	// BufferTriangle holds the TriangleUniform record.
	BufferTriangle
)

// String returns the buffer label.
func (id BufferID) String() string {
	switch id {
	case BufferUniform:
		return "uniform"
	case BufferCamera:
		return "camera"
	case BufferScene:
		return "scene"
	case BufferTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("BufferID(%d)", int(id))
	}
}

// Backend renders one surface. Implementations own their GPU (or CPU)
// resources; the frame loop only writes buffers and asks for draws.
type Backend interface {
	// Configure (re)allocates render targets for the given size.
	Configure(width, height int) error
	// WriteBuffer replaces the contents of buffer id.
	WriteBuffer(id BufferID, data []byte) error
	// Draw renders one frame from the current buffer contents.
	Draw() error
	// Destroy releases all resources. Safe to call more than once.
	Destroy()
}

// Snapshotter is implemented by backends that can read back the last frame.
type Snapshotter interface {
	Snapshot() (*image.RGBA, error)
}

// Picker is implemented by backends that can report which sphere covers a
// pixel. Pick returns -1 when the pixel shows sky.
type Picker interface {
	Pick(x, y int) int
}

// Limiter is implemented by backends with a maximum render target size.
type Limiter interface {
	MaxTextureDimension() int
}

// Buffer is a CPU-side copy of one backend buffer with a dirty flag.
type Buffer struct {
	ID    BufferID
	data  []byte
	dirty bool
}

// NewBuffer creates a buffer that is dirty until its first upload.
func NewBuffer(id BufferID, data []byte) *Buffer {
	return &Buffer{ID: id, data: data, dirty: true}
}

// Write replaces the buffer contents and flags it for upload.
func (b *Buffer) Write(data []byte) {
	b.data = data
	b.dirty = true
}

// Data returns the current contents.
func (b *Buffer) Data() []byte { return b.data }

// Dirty reports whether the buffer changed since the last upload.
func (b *Buffer) Dirty() bool { return b.dirty }

// Payload is the pipeline-specific buffer set carried by a surface.
type Payload interface {
	Buffers() []*Buffer
}

// Pointer is a pointer position in surface pixels.
type Pointer struct {
	X, Y float32
}

// RenderSurface pairs a backend with the per-surface state of one demo.
type RenderSurface[P Payload] struct {
	Name    string
	Payload P

	backend Backend
	width   int
	height  int
	pointer Pointer
	frames  uint64
	visible bool
	ready   bool
}

// NewRenderSurface creates a visible, unconfigured surface.
func NewRenderSurface[P Payload](name string, backend Backend, payload P) *RenderSurface[P] {
	return &RenderSurface[P]{
		Name:    name,
		Payload: payload,
		backend: backend,
		visible: true,
	}
}

// Configure sizes the backend and uploads every buffer once.
func (s *RenderSurface[P]) Configure(width, height int) error {
	if err := s.backend.Configure(width, height); err != nil {
		s.ready = false
		return fmt.Errorf("%s: configure %dx%d: %w", s.Name, width, height, err)
	}
	s.width, s.height = width, height
	for _, b := range s.Payload.Buffers() {
		b.dirty = true
	}
	if err := s.Upload(); err != nil {
		s.ready = false
		return err
	}
	s.ready = true
	return nil
}

// Upload writes every dirty buffer to the backend.
func (s *RenderSurface[P]) Upload() error {
	for _, b := range s.Payload.Buffers() {
		if !b.dirty {
			continue
		}
		if err := s.backend.WriteBuffer(b.ID, b.data); err != nil {
			return fmt.Errorf("%s: write %s buffer: %w", s.Name, b.ID, err)
		}
		b.dirty = false
	}
	return nil
}

// render uploads dirty buffers and issues one draw.
func (s *RenderSurface[P]) render() error {
	if err := s.Upload(); err != nil {
		return err
	}
	if err := s.backend.Draw(); err != nil {
		return fmt.Errorf("%s: draw: %w", s.Name, err)
	}
	s.frames++
	return nil
}

// Snapshot reads back the last frame when the backend supports it.
func (s *RenderSurface[P]) Snapshot() (*image.RGBA, error) {
	snap, ok := s.backend.(Snapshotter)
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.Name, ErrNoSnapshot)
	}
	return snap.Snapshot()
}

// Backend returns the surface backend.
func (s *RenderSurface[P]) Backend() Backend { return s.backend }

// Size returns the configured size in pixels.
func (s *RenderSurface[P]) Size() (width, height int) { return s.width, s.height }

// Ready reports whether the last Configure succeeded.
func (s *RenderSurface[P]) Ready() bool { return s.ready }

// Visible reports the last visibility set by the host or a Gate.
func (s *RenderSurface[P]) Visible() bool { return s.visible }

// SetVisible records the element visibility.
func (s *RenderSurface[P]) SetVisible(v bool) { s.visible = v }

// Pointer returns the last pointer position.
func (s *RenderSurface[P]) Pointer() Pointer { return s.pointer }

// FrameCount returns the number of successful draws.
func (s *RenderSurface[P]) FrameCount() uint64 { return s.frames }

// Destroy releases the backend.
func (s *RenderSurface[P]) Destroy() {
	s.backend.Destroy()
	s.ready = false
}
