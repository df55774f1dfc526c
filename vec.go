package raydemo

import "github.com/chewxy/math32"

// Vec3 is a 3D vector of float32 components.
// It is a value type; every method returns a new vector.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Mul returns v scaled by s.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// MulVec returns the component-wise product of v and w.
func (v Vec3) MulVec(w Vec3) Vec3 {
	return Vec3{v.X * w.X, v.Y * w.Y, v.Z * w.Z}
}

// Div returns v divided by s.
func (v Vec3) Div(s float32) Vec3 {
	return Vec3{v.X / s, v.Y / s, v.Z / s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the right-handed cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSq())
}

// LengthSq returns the squared length of v.
func (v Vec3) LengthSq() float32 {
	return v.Dot(v)
}

// Normalized returns v scaled to unit length.
// The result has NaN components when v is the zero vector; callers must
// never normalize a zero vector.
func (v Vec3) Normalized() Vec3 {
	return v.Div(v.Length())
}

// Lerp returns the linear interpolation between v and w at t.
func (v Vec3) Lerp(w Vec3, t float32) Vec3 {
	return v.Mul(1 - t).Add(w.Mul(t))
}

// NearZero reports whether every component is within 1e-8 of zero.
func (v Vec3) NearZero() bool {
	const eps = 1e-8
	return math32.Abs(v.X) < eps && math32.Abs(v.Y) < eps && math32.Abs(v.Z) < eps
}

// Reflect returns v mirrored about the unit normal n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Refract bends the unit vector v through a surface with unit normal n and
// index ratio eta. It returns the zero vector on total internal reflection,
// matching WGSL's refract builtin.
func (v Vec3) Refract(n Vec3, eta float32) Vec3 {
	d := n.Dot(v)
	k := 1 - eta*eta*(1-d*d)
	if k < 0 {
		return Vec3{}
	}
	return v.Mul(eta).Sub(n.Mul(eta*d + math32.Sqrt(k)))
}

// Components returns v as an array, in x, y, z order.
func (v Vec3) Components() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Approx reports whether v and w differ by at most eps on every axis.
func (v Vec3) Approx(w Vec3, eps float32) bool {
	return math32.Abs(v.X-w.X) <= eps &&
		math32.Abs(v.Y-w.Y) <= eps &&
		math32.Abs(v.Z-w.Z) <= eps
}
