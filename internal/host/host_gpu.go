//go:build !nogpu

package host

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/gpu"
)

// SetLogger routes backend lifecycle messages to l.
func SetLogger(l *slog.Logger) { gpu.SetLogger(l) }

// Open returns the backends named by name: "gpu", "software" or "auto".
// "auto" falls back to software when no GPU device can be opened.
func Open(name string, workers int) (*Backends, error) {
	if name == "software" {
		return Software(workers), nil
	}
	b, err := openGPU()
	if err == nil {
		return b, nil
	}
	if name == "gpu" {
		return nil, err
	}
	raydemo.Logger().Warn("gpu unavailable, using software renderer", "err", err)
	return Software(workers), nil
}

func openGPU() (*Backends, error) {
	dev, err := gpu.OpenDevice()
	if err != nil {
		return nil, err
	}
	tri, err := gpu.NewTrianglePipeline(dev)
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("triangle pipeline: %w", err)
	}
	ray, err := gpu.NewRayPipeline(dev)
	if err != nil {
		tri.Destroy()
		dev.Release()
		return nil, fmt.Errorf("ray pipeline: %w", err)
	}
	name := "gpu"
	if n := dev.Name(); n != "" {
		name += " (" + n + ")"
	}
	return &Backends{Name: name, Triangle: tri, Ray: ray, release: dev.Release}, nil
}
