package raydemo

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
)

// MinCameraDistance is the smallest orbit radius a camera will hold.
const MinCameraDistance = 0.01

// CameraFloats is the number of float32 values in the serialized camera.
const CameraFloats = 16

// CameraSize is the byte size of the camera uniform (4 × vec4<f32>).
const CameraSize = CameraFloats * 4

const twoPi = float32(2 * math.Pi)

// OrbitCamera orbits a look-at center on a sphere described by azimuth,
// altitude and distance. The orthonormal basis is derived from those
// scalars only when UpdateArray is called; Orbit, Pan and Zoom just mark
// the camera dirty.
type OrbitCamera struct {
	center Vec3
	up     Vec3

	distance float32
	azimuth  float32
	altitude float32

	origin, u, v, w Vec3
	array           [CameraFloats]float32
	dirty           bool
}

// NewOrbitCamera creates a camera at source looking at dest.
// The distance is clamped to MinCameraDistance, so source == dest is valid.
// The basis is computed before returning.
func NewOrbitCamera(source, dest, up Vec3) *OrbitCamera {
	off := source.Sub(dest)
	length := off.Length()

	c := &OrbitCamera{
		center:   dest,
		up:       up,
		distance: math32.Max(length, MinCameraDistance),
		azimuth:  wrapAngle(math32.Atan2(off.X, off.Z)),
	}
	if length > 0 {
		c.altitude = math32.Asin(clamp(off.Y/length, -1, 1))
	}
	c.UpdateArray()
	return c
}

// Orbit advances azimuth by dAz radians, wrapping into [0, 2π), and altitude
// by dAlt radians. Altitude is not clamped.
func (c *OrbitCamera) Orbit(dAz, dAlt float32) {
	c.azimuth = wrapAngle(c.azimuth + dAz)
	c.altitude += dAlt
	c.dirty = true
}

// Pan moves the look-at center in the view plane. dx and dy are fractions
// of the current distance along u and v.
func (c *OrbitCamera) Pan(dx, dy float32) {
	c.center = c.center.Add(c.u.Mul(dx * c.distance)).Add(c.v.Mul(dy * c.distance))
	c.dirty = true
}

// Zoom scales the orbit distance by factor, never below MinCameraDistance.
func (c *OrbitCamera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.distance = math32.Max(c.distance*factor, MinCameraDistance)
	c.dirty = true
}

// UpdateArray recomputes the basis from the current spherical coordinates
// and returns the serialized layout: origin, 0, u, 0, v, 0, w, 0.
//
// When w is parallel to the up vector the cross product is zero and u, v
// come out NaN.
func (c *OrbitCamera) UpdateArray() [CameraFloats]float32 {
	sinAz, cosAz := math32.Sincos(c.azimuth)
	sinAlt, cosAlt := math32.Sincos(c.altitude)

	c.w = Vec3{sinAz * cosAlt, sinAlt, cosAz * cosAlt}.Neg()
	c.origin = c.center.Sub(c.w.Mul(c.distance))
	c.u = c.w.Cross(c.up).Normalized()
	c.v = c.u.Cross(c.w)

	c.array = [CameraFloats]float32{
		c.origin.X, c.origin.Y, c.origin.Z, 0,
		c.u.X, c.u.Y, c.u.Z, 0,
		c.v.X, c.v.Y, c.v.Z, 0,
		c.w.X, c.w.Y, c.w.Z, 0,
	}
	c.dirty = false
	return c.array
}

// Bytes returns the little-endian encoding of the last UpdateArray result.
func (c *OrbitCamera) Bytes() []byte {
	return putFloats(make([]byte, CameraSize), c.array[:])
}

// Basis returns the origin and the u, v, w axes from the last UpdateArray.
func (c *OrbitCamera) Basis() (origin, u, v, w Vec3) {
	return c.origin, c.u, c.v, c.w
}

// Azimuth returns the azimuth in radians, in [0, 2π).
func (c *OrbitCamera) Azimuth() float32 { return c.azimuth }

// Altitude returns the altitude in radians.
func (c *OrbitCamera) Altitude() float32 { return c.altitude }

// Distance returns the orbit radius.
func (c *OrbitCamera) Distance() float32 { return c.distance }

// Center returns the look-at point.
func (c *OrbitCamera) Center() Vec3 { return c.center }

// Dirty reports whether the camera moved since the last UpdateArray.
func (c *OrbitCamera) Dirty() bool { return c.dirty }

func wrapAngle(a float32) float32 {
	a = math32.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	// Mod of a tiny negative value can round up to exactly 2π.
	if a >= twoPi {
		a = 0
	}
	return a
}

func clamp(x, lo, hi float32) float32 {
	return math32.Min(math32.Max(x, lo), hi)
}

func putFloats(dst []byte, src []float32) []byte {
	for i, f := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
	return dst
}
