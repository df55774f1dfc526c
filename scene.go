package raydemo

import (
	"fmt"
	"math/rand/v2"
)

// Material selects the scatter function applied at a sphere hit.
type Material uint32

// Materials understood by the ray shader.
const (
	Diffuse Material = iota
	Metallic
	Dielectric
)

// String returns the material name.
func (m Material) String() string {
	switch m {
	case Diffuse:
		return "diffuse"
	case Metallic:
		return "metallic"
	case Dielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("Material(%d)", uint32(m))
	}
}

// Scene buffer geometry.
const (
	// SphereStride is the number of float32 values per sphere record:
	// center(3), radius, albedo(3), material, ior, padding(3).
	SphereStride = 12

	// SphereSize is the byte size of one sphere record.
	SphereSize = SphereStride * 4

	// FixedSpheres is the number of literal records at the start of the buffer.
	FixedSpheres = 4

	// MaxGridHalfExtent is the largest grid half-extent that fits the buffer.
	MaxGridHalfExtent = 11

	// MaxSpheres is the capacity of the scene buffer.
	MaxSpheres = FixedSpheres + (2*MaxGridHalfExtent)*(2*MaxGridHalfExtent)

	// SceneSize is the byte size of the scene buffer.
	SceneSize = MaxSpheres * SphereSize
)

// Sphere is the unpacked form of one scene record.
// A record with Radius <= 0 is inactive.
type Sphere struct {
	Center   Vec3
	Radius   float32
	Albedo   Vec3
	Material Material
	IOR      float32
}

// Active reports whether the record takes part in intersection.
func (s Sphere) Active() bool { return s.Radius > 0 }

// fixedSpheres are the ground followed by the three large spheres.
var fixedSpheres = [FixedSpheres]Sphere{
	{Center: V3(0, -1000, -1), Radius: 1000, Albedo: V3(0.5, 0.5, 0.5), Material: Metallic},
	{Center: V3(0, 1, 0), Radius: 1, Albedo: V3(1, 1, 1), Material: Dielectric, IOR: 1.5},
	{Center: V3(-4, 1, 0), Radius: 1, Albedo: V3(0.4, 0.2, 0.1), Material: Diffuse},
	{Center: V3(4, 1, 0), Radius: 1, Albedo: V3(0.7, 0.6, 0.5), Material: Metallic},
}

// Scene is the packed sphere buffer. It always holds MaxSpheres records;
// unused slots are zero.
type Scene struct {
	data [MaxSpheres * SphereStride]float32
}

// BuildScene fills the fixed records and a (2k)² grid of small spheres
// jittered by rng. Remaining capacity stays zero.
func BuildScene(rng *rand.Rand, k int) (*Scene, error) {
	if k < 0 || k > MaxGridHalfExtent {
		return nil, fmt.Errorf("%w: grid half-extent %d, max %d", ErrSceneCapacity, k, MaxGridHalfExtent)
	}

	s := &Scene{}
	for i, sp := range fixedSpheres {
		s.Set(i, sp)
	}

	i := FixedSpheres
	for a := -k; a < k; a++ {
		for b := -k; b < k; b++ {
			center := V3(float32(a)+0.9*rng.Float32(), 0.2, float32(b)+0.9*rng.Float32())
			albedo := V3(rng.Float32(), rng.Float32(), rng.Float32())
			s.Set(i, Sphere{
				Center:   center,
				Radius:   0.2,
				Albedo:   albedo,
				Material: Material(rng.Float32() * 3),
				IOR:      1.5,
			})
			i++
		}
	}
	return s, nil
}

// AddRandomSpheres places up to n random spheres into inactive slots and
// returns how many were placed. A full scene places none.
func (s *Scene) AddRandomSpheres(rng *rand.Rand, n int) int {
	added := 0
	for i := 0; i < MaxSpheres && added < n; i++ {
		if s.Sphere(i).Active() {
			continue
		}
		s.Set(i, Sphere{
			Center:   V3(10*rng.Float32()-5, 5*rng.Float32(), 10*rng.Float32()-5),
			Radius:   0.2 + 0.5*rng.Float32(),
			Albedo:   V3(rng.Float32(), rng.Float32(), rng.Float32()),
			Material: Material(rng.Float32() * 3),
			IOR:      1.5,
		})
		added++
	}
	return added
}

// Set writes sphere sp into slot i.
func (s *Scene) Set(i int, sp Sphere) {
	r := s.data[i*SphereStride : (i+1)*SphereStride]
	r[0], r[1], r[2] = sp.Center.X, sp.Center.Y, sp.Center.Z
	r[3] = sp.Radius
	r[4], r[5], r[6] = sp.Albedo.X, sp.Albedo.Y, sp.Albedo.Z
	r[7] = float32(sp.Material)
	r[8] = sp.IOR
	r[9], r[10], r[11] = 0, 0, 0
}

// Sphere returns the record in slot i.
func (s *Scene) Sphere(i int) Sphere {
	return DecodeSphere(s.data[i*SphereStride : (i+1)*SphereStride])
}

// Active returns the number of records with a positive radius.
func (s *Scene) Active() int {
	n := 0
	for i := range MaxSpheres {
		if s.data[i*SphereStride+3] > 0 {
			n++
		}
	}
	return n
}

// Floats returns the backing float buffer. The slice aliases the scene.
func (s *Scene) Floats() []float32 {
	return s.data[:]
}

// Bytes returns the little-endian encoding of the whole buffer.
func (s *Scene) Bytes() []byte {
	return putFloats(make([]byte, SceneSize), s.data[:])
}

// DecodeSphere unpacks one SphereStride-long record.
func DecodeSphere(r []float32) Sphere {
	return Sphere{
		Center:   V3(r[0], r[1], r[2]),
		Radius:   r[3],
		Albedo:   V3(r[4], r[5], r[6]),
		Material: Material(r[7]),
		IOR:      r[8],
	}
}
