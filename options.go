package raydemo

import (
	"math/rand/v2"
	"time"
)

// Defaults for the frame loop.
const (
	// DefaultThrottle is the minimum interval between ray redraws.
	DefaultThrottle = 100 * time.Millisecond

	// DefaultOrbitStep is the azimuth advance per ray redraw, in radians.
	DefaultOrbitStep = 0.01

	// DefaultSpinRate is the triangle rotation speed in radians per second.
	DefaultSpinRate = 1.5
)

// Option configures an AppState during creation.
//
// Example:
//
//	app, err := raydemo.NewApp(tri, ray,
//	    raydemo.WithSeed(7),
//	    raydemo.WithGridHalfExtent(5),
//	)
type Option func(*appOptions)

type appOptions struct {
	seed      uint64
	seeded    bool
	gridK     int
	throttle  time.Duration
	orbitStep float32
	maxPasses int
	spinRate  float32
	maxDim    int

	from, to, up Vec3
}

func defaultAppOptions() appOptions {
	return appOptions{
		gridK:     MaxGridHalfExtent,
		throttle:  DefaultThrottle,
		orbitStep: DefaultOrbitStep,
		spinRate:  DefaultSpinRate,
		from:      V3(13, 2, 3),
		to:        V3(0, 0, 0),
		up:        V3(0, 1, 0),
	}
}

// rng returns the scene random source. Without WithSeed the scene differs
// on every run.
func (o *appOptions) rng() *rand.Rand {
	seed := o.seed
	if !o.seeded {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WithSeed makes the scene and random sphere placement reproducible.
func WithSeed(seed uint64) Option {
	return func(o *appOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithGridHalfExtent sets K for the (2K)² grid of small spheres.
// Values above MaxGridHalfExtent make NewApp fail with ErrSceneCapacity.
func WithGridHalfExtent(k int) Option {
	return func(o *appOptions) {
		o.gridK = k
	}
}

// WithThrottle sets the minimum interval between ray redraws.
func WithThrottle(d time.Duration) Option {
	return func(o *appOptions) {
		if d >= 0 {
			o.throttle = d
		}
	}
}

// WithOrbitStep sets the azimuth advance per ray redraw. Zero disables the
// automatic orbit.
func WithOrbitStep(radians float32) Option {
	return func(o *appOptions) {
		o.orbitStep = radians
	}
}

// WithMaxPasses stops ray redraws after n frames until the camera or scene
// changes. Zero means unlimited.
func WithMaxPasses(n int) Option {
	return func(o *appOptions) {
		if n >= 0 {
			o.maxPasses = n
		}
	}
}

// WithSpinRate sets the triangle rotation speed in radians per second.
func WithSpinRate(radiansPerSecond float32) Option {
	return func(o *appOptions) {
		o.spinRate = radiansPerSecond
	}
}

// WithCamera sets the initial camera position, look-at point and up vector.
func WithCamera(from, to, up Vec3) Option {
	return func(o *appOptions) {
		o.from, o.to, o.up = from, to, up
	}
}

// WithMaxTextureDimension caps surface sizes. When unset, the limit comes
// from a backend implementing Limiter, if any.
func WithMaxTextureDimension(n int) Option {
	return func(o *appOptions) {
		if n > 0 {
			o.maxDim = n
		}
	}
}
