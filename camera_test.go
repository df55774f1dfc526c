package raydemo

import (
	"encoding/binary"
	"math"
	"testing"
)

const basisTolerance = 1e-5

func checkBasis(t *testing.T, c *OrbitCamera) {
	t.Helper()
	_, u, v, w := c.Basis()
	for name, axis := range map[string]Vec3{"u": u, "v": v, "w": w} {
		if l := axis.Length(); math.Abs(float64(l-1)) > basisTolerance {
			t.Errorf("|%s| = %v, want 1", name, l)
		}
	}
	for name, d := range map[string]float32{"u·v": u.Dot(v), "u·w": u.Dot(w), "v·w": v.Dot(w)} {
		if math.Abs(float64(d)) > basisTolerance {
			t.Errorf("%s = %v, want 0", name, d)
		}
	}
}

func TestNewOrbitCamera_OriginMatchesSource(t *testing.T) {
	tests := []struct {
		name         string
		source, dest Vec3
	}{
		{"default view", V3(13, 2, 3), V3(0, 0, 0)},
		{"offset center", V3(3, 2, 3), V3(0, 1, 0)},
		{"behind", V3(0, 0, -5), V3(0, 0, 0)},
		{"negative x", V3(-7, 1, 0.5), V3(1, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera(tt.source, tt.dest, V3(0, 1, 0))
			origin, _, _, w := c.Basis()
			if !origin.Approx(tt.source, 1e-4) {
				t.Errorf("origin = %v, want %v", origin, tt.source)
			}
			// w points from the eye toward the center.
			toCenter := tt.dest.Sub(tt.source).Normalized()
			if !w.Approx(toCenter, 1e-5) {
				t.Errorf("w = %v, want %v", w, toCenter)
			}
			checkBasis(t, c)
		})
	}
}

func TestNewOrbitCamera_DistanceClamp(t *testing.T) {
	tests := []struct {
		name         string
		source, dest Vec3
		want         float32
	}{
		{"coincident", V3(1, 2, 3), V3(1, 2, 3), MinCameraDistance},
		{"very close", V3(0, 0, 0.001), V3(0, 0, 0), MinCameraDistance},
		{"far", V3(0, 0, 10), V3(0, 0, 0), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera(tt.source, tt.dest, V3(0, 1, 0))
			if got := c.Distance(); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
			if c.Altitude() != c.Altitude() {
				t.Error("altitude is NaN")
			}
		})
	}
}

func TestOrbitCamera_AzimuthWraps(t *testing.T) {
	deltas := []float32{0.01, 1, 3.5, -0.3, -7, 100, -100, 2 * math.Pi, -2 * math.Pi, -1e-9}

	c := NewOrbitCamera(V3(13, 2, 3), V3(0, 0, 0), V3(0, 1, 0))
	for _, d := range deltas {
		c.Orbit(d, 0)
		c.UpdateArray()
		az := c.Azimuth()
		if az < 0 || az >= 2*math.Pi {
			t.Fatalf("after Orbit(%v) azimuth = %v, want [0, 2π)", d, az)
		}
		checkBasis(t, c)
	}
}

func TestOrbitCamera_OrbitKeepsDistance(t *testing.T) {
	c := NewOrbitCamera(V3(13, 2, 3), V3(0, 0, 0), V3(0, 1, 0))
	want := c.Distance()
	for range 700 {
		c.Orbit(0.01, 0)
		c.UpdateArray()
	}
	origin, _, _, _ := c.Basis()
	if got := origin.Sub(c.Center()).Length(); math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("|origin - center| = %v, want %v", got, want)
	}
}

func TestOrbitCamera_DirtyUntilUpdate(t *testing.T) {
	c := NewOrbitCamera(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0))
	if c.Dirty() {
		t.Fatal("new camera should not be dirty")
	}
	before := c.Bytes()

	c.Orbit(0.5, 0)
	if !c.Dirty() {
		t.Fatal("Orbit should mark camera dirty")
	}
	if got := c.Bytes(); string(got) != string(before) {
		t.Error("Orbit must not change the serialized array before UpdateArray")
	}

	c.UpdateArray()
	if c.Dirty() {
		t.Error("UpdateArray should clear dirty")
	}
	if got := c.Bytes(); string(got) == string(before) {
		t.Error("UpdateArray should change the serialized array")
	}
}

func TestOrbitCamera_AltitudeUnclamped(t *testing.T) {
	c := NewOrbitCamera(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0))
	c.Orbit(0, 3)
	if got := c.Altitude(); math.Abs(float64(got-3)) > 1e-6 {
		t.Errorf("Altitude() = %v, want 3", got)
	}
}

func TestOrbitCamera_ArrayLayout(t *testing.T) {
	c := NewOrbitCamera(V3(13, 2, 3), V3(0, 0, 0), V3(0, 1, 0))
	arr := c.UpdateArray()
	origin, u, v, w := c.Basis()

	want := [CameraFloats]float32{
		origin.X, origin.Y, origin.Z, 0,
		u.X, u.Y, u.Z, 0,
		v.X, v.Y, v.Z, 0,
		w.X, w.Y, w.Z, 0,
	}
	if arr != want {
		t.Errorf("UpdateArray() = %v, want %v", arr, want)
	}

	b := c.Bytes()
	if len(b) != CameraSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), CameraSize)
	}
	for i, f := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != f {
			t.Errorf("float %d = %v, want %v", i, got, f)
		}
	}
}

func TestOrbitCamera_PanZoom(t *testing.T) {
	c := NewOrbitCamera(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0))

	c.Zoom(0.5)
	if got := c.Distance(); math.Abs(float64(got-2.5)) > 1e-6 {
		t.Errorf("Distance after Zoom(0.5) = %v, want 2.5", got)
	}
	c.Zoom(1e-6)
	if got := c.Distance(); got != MinCameraDistance {
		t.Errorf("Distance after tiny zoom = %v, want %v", got, MinCameraDistance)
	}
	c.Zoom(-1)
	if got := c.Distance(); got != MinCameraDistance {
		t.Errorf("non-positive zoom changed distance to %v", got)
	}

	c = NewOrbitCamera(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0))
	_, u, _, _ := c.Basis()
	c.Pan(0.1, 0)
	want := u.Mul(0.5)
	if !c.Center().Approx(want, 1e-5) {
		t.Errorf("Center after Pan = %v, want %v", c.Center(), want)
	}
	if !c.Dirty() {
		t.Error("Pan should mark camera dirty")
	}
}
