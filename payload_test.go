package raydemo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTriangleUniform_RoundTrip(t *testing.T) {
	u := TriangleUniform{PointerX: -0.25, PointerY: 0.75, Angle: 3.5}
	b := u.Bytes()
	if len(b) != TriangleUniformSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), TriangleUniformSize)
	}
	if got := DecodeTriangleUniform(b); got != u {
		t.Errorf("decoded = %+v, want %+v", got, u)
	}
	if got := DecodeTriangleUniform(b[:8]); got != (TriangleUniform{}) {
		t.Errorf("short decode = %+v, want zero", got)
	}
}

func TestTriangleUniform_Vertices(t *testing.T) {
	tests := []struct {
		name string
		u    TriangleUniform
		top  mgl32.Vec2
	}{
		{"identity", TriangleUniform{}, mgl32.Vec2{0, triangleRadius}},
		{"translated", TriangleUniform{PointerX: 0.5, PointerY: -0.5}, mgl32.Vec2{0.5, -0.5 + triangleRadius}},
		{"quarter turn", TriangleUniform{Angle: math.Pi / 2}, mgl32.Vec2{-triangleRadius, 0}},
		{"half turn", TriangleUniform{Angle: math.Pi}, mgl32.Vec2{0, -triangleRadius}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.u.Vertices()
			for i := range 2 {
				if math.Abs(float64(v[0][i]-tt.top[i])) > 1e-6 {
					t.Errorf("top vertex = %v, want %v", v[0], tt.top)
					break
				}
			}
			// Rotation and translation preserve the circumradius.
			center := mgl32.Vec2{tt.u.PointerX, tt.u.PointerY}
			for i, p := range v {
				if r := p.Sub(center).Len(); math.Abs(float64(r-triangleRadius)) > 1e-6 {
					t.Errorf("vertex %d radius = %v, want %v", i, r, triangleRadius)
				}
			}
		})
	}
}

func TestPixelToClip(t *testing.T) {
	tests := []struct {
		x, y         float32
		w, h         int
		wantX, wantY float32
	}{
		{0, 0, 100, 50, -1, 1},
		{100, 50, 100, 50, 1, -1},
		{50, 25, 100, 50, 0, 0},
		{10, 10, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		x, y := PixelToClip(tt.x, tt.y, tt.w, tt.h)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("PixelToClip(%v, %v, %d, %d) = (%v, %v), want (%v, %v)",
				tt.x, tt.y, tt.w, tt.h, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestRayPayload_BufferOrder(t *testing.T) {
	s, _ := BuildScene(seededRand(1), 0)
	p := newRayPayload(NewOrbitCamera(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0)), s)

	bufs := p.Buffers()
	want := []BufferID{BufferUniform, BufferCamera, BufferScene}
	if len(bufs) != len(want) {
		t.Fatalf("len(Buffers()) = %d", len(bufs))
	}
	for i, id := range want {
		if bufs[i].ID != id {
			t.Errorf("buffer %d = %s, want %s", i, bufs[i].ID, id)
		}
		if !bufs[i].Dirty() {
			t.Errorf("buffer %s should start dirty", id)
		}
	}
}
