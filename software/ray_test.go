package software

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/internal/tracer"
)

func writeRayBuffers(t *testing.T, r *RayRenderer, w, h int) *tracer.Frame {
	t.Helper()
	scene, err := raydemo.BuildScene(rand.New(rand.NewPCG(1, 2)), 1)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	cam := raydemo.NewOrbitCamera(raydemo.V3(13, 2, 3), raydemo.V3(0, 0, 0), raydemo.V3(0, 1, 0))
	u := raydemo.Uniforms{Frame: 5, Width: uint32(w), Height: uint32(h)}

	for id, data := range map[raydemo.BufferID][]byte{
		raydemo.BufferUniform: u.Bytes(),
		raydemo.BufferCamera:  cam.Bytes(),
		raydemo.BufferScene:   scene.Bytes(),
	} {
		if err := r.WriteBuffer(id, data); err != nil {
			t.Fatalf("WriteBuffer(%s): %v", id, err)
		}
	}
	f, err := tracer.Decode(u.Bytes(), cam.Bytes(), scene.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return f
}

func channel(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

func TestRayRenderer_Draw(t *testing.T) {
	const w, h = 40, 30
	r := NewRayRenderer(2)
	defer r.Destroy()

	if err := r.Configure(w, h); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	f := writeRayBuffers(t, r, w, h)
	if err := r.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("bounds = %v, want %dx%d", b, w, h)
	}

	for _, p := range [][2]int{{0, 0}, {w / 2, h / 2}, {w - 1, h - 1}} {
		c := f.Shade(p[0], p[1])
		want := [3]uint8{channel(c.X), channel(c.Y), channel(c.Z)}
		got := img.RGBAAt(p[0], p[1])
		if got.A != 0xff {
			t.Errorf("pixel %v alpha = %d, want 255", p, got.A)
		}
		if [3]uint8{got.R, got.G, got.B} != want {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
	if got, want := r.Pick(w/2, h/2), f.Pick(w/2, h/2); got != want {
		t.Errorf("Pick(center) = %d, want %d", got, want)
	}
}

func TestRayRenderer_SnapshotIsCopy(t *testing.T) {
	r := NewRayRenderer(1)
	defer r.Destroy()
	if err := r.Configure(8, 8); err != nil {
		t.Fatal(err)
	}
	writeRayBuffers(t, r, 8, 8)
	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	img.Pix[0] ^= 0xff
	if img.Pix[0] == r.img.Pix[0] {
		t.Error("Snapshot shares memory with the render target")
	}
}

func TestRayRenderer_Errors(t *testing.T) {
	r := NewRayRenderer(1)
	defer r.Destroy()

	if err := r.Draw(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Draw before Configure = %v, want ErrNotConfigured", err)
	}
	if _, err := r.Snapshot(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Snapshot before Configure = %v, want ErrNotConfigured", err)
	}
	if got := r.Pick(0, 0); got != -1 {
		t.Errorf("Pick before Draw = %d, want -1", got)
	}

	sizes := []struct {
		name string
		w, h int
	}{
		{"zero", 0, 0},
		{"negative", -4, 4},
		{"too wide", DefaultMaxDimension + 1, 4},
	}
	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Configure(tt.w, tt.h); !errors.Is(err, raydemo.ErrInvalidSize) {
				t.Errorf("Configure(%d, %d) = %v, want ErrInvalidSize", tt.w, tt.h, err)
			}
		})
	}

	if err := r.Configure(4, 4); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(); !errors.Is(err, tracer.ErrShortBuffer) {
		t.Errorf("Draw without buffers = %v, want ErrShortBuffer", err)
	}
	if err := r.WriteBuffer(raydemo.BufferTriangle, nil); err == nil {
		t.Error("WriteBuffer(triangle) should fail")
	}
}

func TestRayRenderer_DestroyTwice(t *testing.T) {
	r := NewRayRenderer(1)
	r.Destroy()
	r.Destroy()
	if err := r.Draw(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Draw after Destroy = %v, want ErrNotConfigured", err)
	}
}
