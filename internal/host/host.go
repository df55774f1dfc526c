// Package host opens the rendering backends for the demo commands.
package host

import (
	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/software"
)

// Backends is the pair of surfaces handed to raydemo.NewApp.
type Backends struct {
	// Name describes the backend for summaries and window titles.
	Name     string
	Triangle raydemo.Backend
	Ray      raydemo.Backend

	release func()
}

// Close releases what Open acquired beyond the two backends. Destroy the
// app (or both backends) first.
func (b *Backends) Close() {
	if b.release != nil {
		b.release()
		b.release = nil
	}
}

// Destroy releases both backends and then calls Close. Use it when the
// backends never made it into an app.
func (b *Backends) Destroy() {
	b.Triangle.Destroy()
	b.Ray.Destroy()
	b.Close()
}

// Software returns the CPU backends.
func Software(workers int) *Backends {
	return &Backends{
		Name:     "software",
		Triangle: software.NewTriangleRenderer(),
		Ray:      software.NewRayRenderer(workers),
	}
}
