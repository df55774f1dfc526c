//go:build nogpu

package host

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/raydemo"
)

// SetLogger is a no-op without the gpu package.
func SetLogger(*slog.Logger) {}

// Open returns the software backends. Asking for "gpu" fails.
func Open(name string, workers int) (*Backends, error) {
	if name == "gpu" {
		return nil, fmt.Errorf("built with -tags nogpu: %w", raydemo.ErrUnsupportedPlatform)
	}
	return Software(workers), nil
}
