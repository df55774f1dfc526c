package raydemo

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RayPayload carries the three buffers of the path-traced surface.
type RayPayload struct {
	Uniforms Uniforms
	Camera   *OrbitCamera
	Scene    *Scene

	uniformBuf *Buffer
	cameraBuf  *Buffer
	sceneBuf   *Buffer
}

func newRayPayload(cam *OrbitCamera, scene *Scene) *RayPayload {
	p := &RayPayload{Camera: cam, Scene: scene}
	p.uniformBuf = NewBuffer(BufferUniform, p.Uniforms.Bytes())
	p.cameraBuf = NewBuffer(BufferCamera, cam.Bytes())
	p.sceneBuf = NewBuffer(BufferScene, scene.Bytes())
	return p
}

// Buffers returns the uniform, camera and scene buffers in binding order.
func (p *RayPayload) Buffers() []*Buffer {
	return []*Buffer{p.uniformBuf, p.cameraBuf, p.sceneBuf}
}

func (p *RayPayload) syncUniforms() { p.uniformBuf.Write(p.Uniforms.Bytes()) }

// syncCamera refreshes the basis before serializing; the buffer must never
// be uploaded from a stale array.
func (p *RayPayload) syncCamera() {
	p.Camera.UpdateArray()
	p.cameraBuf.Write(p.Camera.Bytes())
}

func (p *RayPayload) syncScene() { p.sceneBuf.Write(p.Scene.Bytes()) }

// TriangleUniformSize is the byte size of the triangle uniform:
// pointer (vec2<f32>), angle (f32), padding (f32).
const TriangleUniformSize = 16

// triangleRadius is the circumradius of the triangle in clip space.
const triangleRadius = 0.25

// TriangleVertices is the unrotated triangle in clip space, centered on
// the origin. The vertex buffer uploads these as three vec2<f32>.
var TriangleVertices = [3]mgl32.Vec2{
	{0, triangleRadius},
	{-triangleRadius * 0.8660254, -triangleRadius * 0.5},
	{triangleRadius * 0.8660254, -triangleRadius * 0.5},
}

// Triangle surface colors. The triangle shader writes TriangleFill and the
// pass clears to TriangleClear.
var (
	TriangleFill  = color.RGBA{R: 242, G: 115, B: 38, A: 255}
	TriangleClear = color.RGBA{R: 26, G: 26, B: 31, A: 255}
)

// TriangleUniform positions and rotates the triangle. The pointer is in
// clip space with y up.
type TriangleUniform struct {
	PointerX, PointerY float32
	Angle              float32
}

// Bytes returns the 16-byte little-endian encoding.
func (t TriangleUniform) Bytes() []byte {
	b := make([]byte, TriangleUniformSize)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(t.PointerX))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(t.PointerY))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(t.Angle))
	return b
}

// DecodeTriangleUniform parses a record written by Bytes.
func DecodeTriangleUniform(b []byte) TriangleUniform {
	if len(b) < 12 {
		return TriangleUniform{}
	}
	return TriangleUniform{
		PointerX: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		PointerY: math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Angle:    math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

// Vertices returns the rotated and translated triangle in clip space.
// The triangle shader applies the same transform.
func (t TriangleUniform) Vertices() [3]mgl32.Vec2 {
	rot := mgl32.Rotate2D(t.Angle)
	offset := mgl32.Vec2{t.PointerX, t.PointerY}
	var out [3]mgl32.Vec2
	for i, v := range TriangleVertices {
		out[i] = rot.Mul2x1(v).Add(offset)
	}
	return out
}

// TrianglePayload carries the triangle uniform buffer.
type TrianglePayload struct {
	Uniform TriangleUniform

	buf *Buffer
}

func newTrianglePayload() *TrianglePayload {
	p := &TrianglePayload{}
	p.buf = NewBuffer(BufferTriangle, p.Uniform.Bytes())
	return p
}

// Buffers returns the triangle uniform buffer.
func (p *TrianglePayload) Buffers() []*Buffer {
	return []*Buffer{p.buf}
}

func (p *TrianglePayload) sync() { p.buf.Write(p.Uniform.Bytes()) }

// PixelToClip maps a pixel position to clip space with y up.
func PixelToClip(x, y float32, width, height int) (float32, float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return 2*x/float32(width) - 1, 1 - 2*y/float32(height)
}
