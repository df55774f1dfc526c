// Package tracer is a CPU implementation of the ray shader. It reads the
// same uniform, camera and scene buffers and follows the same random
// sequence, so its output can stand in for the GPU in tests and in the
// software backend.
package tracer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/raydemo"
)

// Shader constants.
const (
	// MaxBounces bounds the random walk per pixel.
	MaxBounces = 8

	// Epsilon is both the minimum hit distance and the origin offset for
	// scattered rays.
	Epsilon = 1e-2

	// FocalDistance is the distance from the eye to the image plane.
	FocalDistance = 2.0

	// Gamma is the display gamma applied to the final color.
	Gamma = 2.2
)

// ErrShortBuffer is returned when a buffer is smaller than its layout.
var ErrShortBuffer = errors.New("tracer: buffer too short")

// Ray is a half-line from Origin along unit Direction.
type Ray struct {
	Origin    raydemo.Vec3
	Direction raydemo.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) raydemo.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit describes the closest intersection along a ray.
type Hit struct {
	T      float32
	Index  int
	Sphere raydemo.Sphere
	Point  raydemo.Vec3
	Normal raydemo.Vec3 // faces against the incoming ray
	Front  bool         // ray arrived from outside the sphere
}

// Camera is the decoded camera uniform.
type Camera struct {
	Origin, U, V, W raydemo.Vec3
}

type activeSphere struct {
	index int
	raydemo.Sphere
}

// Frame holds decoded buffers for one frame.
type Frame struct {
	Uniforms raydemo.Uniforms
	Camera   Camera

	spheres []activeSphere
}

// Decode builds a Frame from the raw uniform, camera and scene buffers.
func Decode(uniform, camera, scene []byte) (*Frame, error) {
	if len(uniform) < raydemo.UniformSize {
		return nil, fmt.Errorf("%w: uniform %d bytes", ErrShortBuffer, len(uniform))
	}
	if len(camera) < raydemo.CameraSize {
		return nil, fmt.Errorf("%w: camera %d bytes", ErrShortBuffer, len(camera))
	}
	if len(scene)%raydemo.SphereSize != 0 {
		return nil, fmt.Errorf("%w: scene %d bytes is not a whole number of records", ErrShortBuffer, len(scene))
	}

	f := &Frame{Uniforms: raydemo.DecodeUniforms(uniform)}
	cam := readFloats(camera[:raydemo.CameraSize])
	f.Camera = Camera{
		Origin: raydemo.V3(cam[0], cam[1], cam[2]),
		U:      raydemo.V3(cam[4], cam[5], cam[6]),
		V:      raydemo.V3(cam[8], cam[9], cam[10]),
		W:      raydemo.V3(cam[12], cam[13], cam[14]),
	}

	// The shader's sphere array has a fixed length; records past it are
	// never intersected.
	floats := readFloats(scene)
	n := min(len(floats)/raydemo.SphereStride, raydemo.MaxSpheres)
	for i := range n {
		sp := raydemo.DecodeSphere(floats[i*raydemo.SphereStride : (i+1)*raydemo.SphereStride])
		if !sp.Active() {
			continue
		}
		f.spheres = append(f.spheres, activeSphere{index: i, Sphere: sp})
	}
	return f, nil
}

func readFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// ActiveSpheres returns the number of spheres taking part in intersection.
func (f *Frame) ActiveSpheres() int { return len(f.spheres) }

// PrimaryRay returns the camera ray through fragment coordinate (fx, fy),
// where pixel centers sit at half-integers and y grows downward.
func (f *Frame) PrimaryRay(fx, fy float32) Ray {
	w := float32(max(f.Uniforms.Width, 1))
	h := float32(max(f.Uniforms.Height, 1))

	x := (fx/w*2 - 1) * (w / h)
	y := 1 - fy/h*2

	c := f.Camera
	dir := c.U.Mul(x).Add(c.V.Mul(y)).Add(c.W.Mul(FocalDistance)).Normalized()
	return Ray{Origin: c.Origin, Direction: dir}
}

// Intersect returns the closest hit with Epsilon < t. Equal distances keep
// the sphere that comes first in the buffer.
func (f *Frame) Intersect(r Ray) (Hit, bool) {
	closest := float32(math.MaxFloat32)
	found := -1

	for i := range f.spheres {
		s := &f.spheres[i]
		oc := r.Origin.Sub(s.Center)
		a := r.Direction.Dot(r.Direction)
		halfB := oc.Dot(r.Direction)
		c := oc.Dot(oc) - s.Radius*s.Radius
		disc := halfB*halfB - a*c
		if disc < 0 {
			continue
		}
		sq := math32.Sqrt(disc)
		t := (-halfB - sq) / a
		if t <= Epsilon || t >= closest {
			t = (-halfB + sq) / a
			if t <= Epsilon || t >= closest {
				continue
			}
		}
		closest = t
		found = i
	}
	if found < 0 {
		return Hit{}, false
	}

	s := f.spheres[found]
	p := r.At(closest)
	outward := p.Sub(s.Center).Div(s.Radius)
	front := r.Direction.Dot(outward) < 0
	normal := outward
	if !front {
		normal = outward.Neg()
	}
	return Hit{T: closest, Index: s.index, Sphere: s.Sphere, Point: p, Normal: normal, Front: front}, true
}

// Sky returns the background gradient for a ray direction.
func Sky(dir raydemo.Vec3) raydemo.Vec3 {
	t := 0.5 * (dir.Normalized().Y + 1)
	return raydemo.V3(1, 1, 1).Lerp(raydemo.V3(0.5, 0.7, 1.0), t)
}

// RandomUnitVector returns a uniformly distributed unit vector.
func RandomUnitVector(rng *RNG) raydemo.Vec3 {
	z := rng.Float32()*2 - 1
	a := rng.Float32() * 2 * math.Pi
	r := math32.Sqrt(math32.Max(1-z*z, 0))
	sin, cos := math32.Sincos(a)
	return raydemo.V3(r*cos, r*sin, z)
}

// Reflectance is Schlick's approximation of Fresnel reflectance.
func Reflectance(cosine, eta float32) float32 {
	r0 := (1 - eta) / (1 + eta)
	r0 *= r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}

// Scatter bounces r off the sphere at h and returns the new ray and the
// attenuation. Every material attenuates by its albedo, dielectrics
// included.
func Scatter(r Ray, h Hit, rng *RNG) (Ray, raydemo.Vec3) {
	s := h.Sphere
	var dir raydemo.Vec3
	switch s.Material {
	case raydemo.Metallic:
		dir = r.Direction.Reflect(h.Normal)
	case raydemo.Dielectric:
		eta := s.IOR
		if h.Front {
			eta = 1 / s.IOR
		}
		cos := math32.Min(r.Direction.Neg().Dot(h.Normal), 1)
		refracted := r.Direction.Refract(h.Normal, eta)
		if refracted == (raydemo.Vec3{}) || Reflectance(cos, eta) > rng.Float32() {
			dir = r.Direction.Reflect(h.Normal)
		} else {
			dir = refracted
		}
	default:
		dir = h.Normal.Add(RandomUnitVector(rng))
		if dir.NearZero() {
			dir = h.Normal
		}
	}
	dir = dir.Normalized()

	// Offset toward the side the new ray leaves from.
	offset := h.Normal.Mul(Epsilon)
	if dir.Dot(h.Normal) < 0 {
		offset = offset.Neg()
	}
	return Ray{Origin: h.Point.Add(offset), Direction: dir}, s.Albedo
}

// Radiance follows r for at most MaxBounces and returns the linear color.
// Paths that never reach the sky contribute black.
func (f *Frame) Radiance(r Ray, rng *RNG) raydemo.Vec3 {
	throughput := raydemo.V3(1, 1, 1)
	for range MaxBounces {
		h, ok := f.Intersect(r)
		if !ok {
			return throughput.MulVec(Sky(r.Direction))
		}
		var att raydemo.Vec3
		r, att = Scatter(r, h, rng)
		throughput = throughput.MulVec(att)
	}
	return raydemo.Vec3{}
}

// Shade returns the gamma-corrected color of pixel (x, y).
func (f *Frame) Shade(x, y int) raydemo.Vec3 {
	pixel := uint32(y)*f.Uniforms.Width + uint32(x) //nolint:gosec // pixel coordinates are non-negative
	rng := NewPixelRNG(pixel, f.Uniforms.Frame)
	r := f.PrimaryRay(float32(x)+0.5, float32(y)+0.5)
	c := f.Radiance(r, rng)
	return GammaCorrect(c)
}

// GammaCorrect applies the display gamma to a linear color.
func GammaCorrect(c raydemo.Vec3) raydemo.Vec3 {
	const inv = 1 / Gamma
	return raydemo.V3(
		math32.Pow(math32.Max(c.X, 0), inv),
		math32.Pow(math32.Max(c.Y, 0), inv),
		math32.Pow(math32.Max(c.Z, 0), inv),
	)
}

// Pick returns the scene index of the sphere seen through pixel (x, y), or
// -1 when the pixel shows sky.
func (f *Frame) Pick(x, y int) int {
	h, ok := f.Intersect(f.PrimaryRay(float32(x)+0.5, float32(y)+0.5))
	if !ok {
		return -1
	}
	return h.Index
}
