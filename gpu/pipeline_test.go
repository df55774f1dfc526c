//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/raydemo"
)

// createNoopDevice opens a device on the noop HAL backend. Submissions
// complete immediately and copies leave buffers zeroed.
func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	device, err := wgpu.NewDeviceFromHAL(openDev.Device, openDev.Queue, gputypes.Features(0), gputypes.DefaultLimits(), "noop-test")
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		t.Fatalf("NewDeviceFromHAL failed: %v", err)
	}
	t.Cleanup(func() {
		device.Release()
		instance.Destroy()
	})
	return Wrap(device)
}

func TestRayPipeline_Lifecycle(t *testing.T) {
	dev := createNoopDevice(t)
	p, err := NewRayPipeline(dev)
	if err != nil {
		t.Fatalf("NewRayPipeline: %v", err)
	}
	defer p.Destroy()

	if err := p.Draw(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Draw before Configure = %v, want ErrNotConfigured", err)
	}
	if err := p.Configure(64, 48); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	cam := raydemo.NewOrbitCamera(raydemo.V3(13, 2, 3), raydemo.V3(0, 0, 0), raydemo.V3(0, 1, 0))
	u := raydemo.Uniforms{Frame: 1, Width: 64, Height: 48}
	writes := []struct {
		id   raydemo.BufferID
		data []byte
	}{
		{raydemo.BufferUniform, u.Bytes()},
		{raydemo.BufferCamera, cam.Bytes()},
		{raydemo.BufferScene, make([]byte, raydemo.SceneSize)},
	}
	for _, w := range writes {
		if err := p.WriteBuffer(w.id, w.data); err != nil {
			t.Fatalf("WriteBuffer(%s): %v", w.id, err)
		}
	}
	for range 3 {
		if err := p.Draw(); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}
	if n := p.Pending(); n != 0 {
		t.Errorf("Pending() = %d after noop submits, want 0", n)
	}

	img, err := p.Snapshot()
	if err != nil {
		t.Skipf("noop readback: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("Snapshot bounds = %v, want 64x48", b)
	}
}

func TestRayPipeline_WriteBufferErrors(t *testing.T) {
	dev := createNoopDevice(t)
	p, err := NewRayPipeline(dev)
	if err != nil {
		t.Fatalf("NewRayPipeline: %v", err)
	}
	defer p.Destroy()

	if err := p.WriteBuffer(raydemo.BufferTriangle, make([]byte, 16)); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("WriteBuffer(triangle) = %v, want ErrUnknownBuffer", err)
	}
	if err := p.WriteBuffer(raydemo.BufferCamera, make([]byte, raydemo.CameraSize+4)); err == nil {
		t.Error("oversized camera write should fail")
	}
}

func TestPipeline_ConfigureInvalidSize(t *testing.T) {
	dev := createNoopDevice(t)
	p, err := NewTrianglePipeline(dev)
	if err != nil {
		t.Fatalf("NewTrianglePipeline: %v", err)
	}
	defer p.Destroy()

	limit := dev.MaxTextureDimension()
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"negative height", 10, -1},
		{"over limit", limit + 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Configure(tt.w, tt.h); !errors.Is(err, raydemo.ErrInvalidSize) {
				t.Errorf("Configure(%d, %d) = %v, want ErrInvalidSize", tt.w, tt.h, err)
			}
		})
	}
}

func TestTrianglePipeline_Resize(t *testing.T) {
	dev := createNoopDevice(t)
	p, err := NewTrianglePipeline(dev)
	if err != nil {
		t.Fatalf("NewTrianglePipeline: %v", err)
	}
	defer p.Destroy()

	for _, size := range [][2]int{{32, 32}, {32, 32}, {80, 20}} {
		if err := p.Configure(size[0], size[1]); err != nil {
			t.Fatalf("Configure(%v): %v", size, err)
		}
		uni := raydemo.TriangleUniform{PointerX: 0.2, Angle: 1}
		if err := p.WriteBuffer(raydemo.BufferTriangle, uni.Bytes()); err != nil {
			t.Fatalf("WriteBuffer: %v", err)
		}
		if err := p.Draw(); err != nil {
			t.Fatalf("Draw: %v", err)
		}
		if p.target.width != uint32(size[0]) || p.target.height != uint32(size[1]) {
			t.Errorf("target = %dx%d, want %v", p.target.width, p.target.height, size)
		}
	}
}

func TestPipeline_DestroyIdempotent(t *testing.T) {
	dev := createNoopDevice(t)
	p, err := NewTrianglePipeline(dev)
	if err != nil {
		t.Fatalf("NewTrianglePipeline: %v", err)
	}
	if err := p.Configure(16, 16); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	p.Destroy()
	p.Destroy()
	if err := p.Draw(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Draw after Destroy = %v, want ErrNotConfigured", err)
	}
	if _, err := p.Snapshot(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Snapshot after Destroy = %v, want ErrNotConfigured", err)
	}
}

func TestNewPipeline_NilDevice(t *testing.T) {
	if _, err := NewRayPipeline(nil); !errors.Is(err, raydemo.ErrNoContext) {
		t.Errorf("NewRayPipeline(nil) = %v, want ErrNoContext", err)
	}
}

func TestWrap_NotOwned(t *testing.T) {
	dev := createNoopDevice(t)
	if !dev.External() {
		t.Error("wrapped device should be external")
	}
	dev.Release()
	if dev.device == nil {
		t.Error("Release must not drop a borrowed device")
	}
}

type fakeProvider struct {
	device gpucontext.Device
}

func (p fakeProvider) Device() gpucontext.Device             { return p.device }
func (p fakeProvider) Queue() gpucontext.Queue               { return nil }
func (p fakeProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p fakeProvider) Adapter() gpucontext.Adapter           { return nil }
func (p fakeProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{Name: "fake"} }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(nil); !errors.Is(err, raydemo.ErrNoContext) {
		t.Errorf("NewFromProvider(nil) = %v, want ErrNoContext", err)
	}
	if _, err := NewFromProvider(fakeProvider{device: "not a device"}); !errors.Is(err, raydemo.ErrNoContext) {
		t.Errorf("foreign device = %v, want ErrNoContext", err)
	}

	noopDev := createNoopDevice(t)
	d, err := NewFromProvider(fakeProvider{device: noopDev.device})
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	if d.Name() != "fake" || !d.External() {
		t.Errorf("got name %q external %v", d.Name(), d.External())
	}
}

func TestUnpackRows(t *testing.T) {
	const w, h, stride = 2, 2, 12
	src := make([]byte, stride*h)
	for i := range src {
		src[i] = byte(i)
	}
	img := unpackRows(src, w, h, stride)
	if got := img.Pix[0:8]; got[0] != 0 || got[7] != 7 {
		t.Errorf("row 0 = %v", got)
	}
	if got := img.Pix[8:16]; got[0] != 12 || got[7] != 19 {
		t.Errorf("row 1 = %v", got)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ n, want uint32 }{
		{0, 0}, {1, 256}, {256, 256}, {257, 512}, {4 * 100, 512},
	}
	for _, tt := range tests {
		if got := alignUp(tt.n, rowAlignment); got != tt.want {
			t.Errorf("alignUp(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
