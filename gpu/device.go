//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	_ "github.com/gogpu/wgpu/hal/allbackends" // register platform backends

	"github.com/gogpu/raydemo"
)

// Device is a WebGPU device and queue shared by the pipelines of one
// process.
type Device struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	name     string
	external bool
}

// OpenDevice creates an instance over the primary backends and opens a
// device on the preferred adapter.
//
// It returns raydemo.ErrUnsupportedPlatform when no backend is registered
// and raydemo.ErrNoAdapter when no usable adapter or device is found.
func OpenDevice() (*Device, error) {
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: wgpu.BackendsPrimary,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", raydemo.ErrUnsupportedPlatform, err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		if errors.Is(err, wgpu.ErrNoBackends) {
			return nil, fmt.Errorf("%w: %w", raydemo.ErrUnsupportedPlatform, err)
		}
		return nil, fmt.Errorf("%w: request adapter: %w", raydemo.ErrNoAdapter, err)
	}

	info := adapter.Info()
	if info.DeviceType == gputypes.DeviceTypeCPU {
		slogger().Warn("gpu: software adapter selected, rendering will be slow", "adapter", info.Name)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "raydemo",
		RequiredLimits: wgpu.DefaultLimits(),
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %w", raydemo.ErrNoAdapter, err)
	}

	slogger().Info("gpu: device opened", "adapter", info.Name, "backend", info.Backend, "type", info.DeviceType)
	return &Device{
		device:   device,
		queue:    device.Queue(),
		instance: instance,
		adapter:  adapter,
		name:     info.Name,
	}, nil
}

// NewFromProvider borrows the device of a host that already owns one.
// The provider's Device must be a *wgpu.Device; anything else yields
// raydemo.ErrNoContext.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: nil device provider", raydemo.ErrNoContext)
	}
	dev, ok := provider.Device().(*wgpu.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: provider device is %T, not *wgpu.Device", raydemo.ErrNoContext, provider.Device())
	}
	d := Wrap(dev)
	if d.queue == nil {
		return nil, fmt.Errorf("%w: provider device has no queue", raydemo.ErrNoContext)
	}
	d.name = provider.AdapterInfo().Name
	slogger().Info("gpu: using shared device", "adapter", d.name)
	return d, nil
}

// Wrap adopts an existing device without taking ownership of it.
func Wrap(device *wgpu.Device) *Device {
	return &Device{
		device:   device,
		queue:    device.Queue(),
		external: true,
	}
}

// Name returns the adapter name, if known.
func (d *Device) Name() string { return d.name }

// External reports whether the device belongs to someone else.
func (d *Device) External() bool { return d.external }

// MaxTextureDimension returns the largest 2D texture edge the device
// accepts.
func (d *Device) MaxTextureDimension() int {
	return int(d.device.Limits().MaxTextureDimension2D)
}

// Release frees the device when this package opened it. It is a no-op for
// borrowed devices.
func (d *Device) Release() {
	if d.external {
		return
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
		d.queue = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
