// Package config loads demo settings from a JSON file and command-line
// flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/gogpu/raydemo"
)

// Formats accepted for exported frames.
var Formats = []string{"png", "webp", "tga", "gif"}

// Backends accepted for rendering. "auto" tries the GPU and falls back to
// software.
var Backends = []string{"auto", "gpu", "software"}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds render and output settings.
type Config struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Frames int `json:"frames"`

	Seed           uint64 `json:"seed"`
	GridHalfExtent int    `json:"grid_half_extent"`

	Throttle  Duration `json:"throttle"`
	OrbitStep float32  `json:"orbit_step"`
	MaxPasses int      `json:"max_passes"`

	Backend     string `json:"backend"`
	OutputDir   string `json:"output_dir"`
	Format      string `json:"format"`
	Supersample int    `json:"supersample"`
	Workers     int    `json:"workers"`
}

// Duration is a time.Duration written as a string ("100ms") in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("config: duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Width:          640,
		Height:         360,
		Frames:         30,
		Seed:           1,
		GridHalfExtent: raydemo.MaxGridHalfExtent,
		Throttle:       Duration(raydemo.DefaultThrottle),
		OrbitStep:      raydemo.DefaultOrbitStep,
		Backend:        "auto",
		OutputDir:      "out",
		Format:         "png",
		Supersample:    1,
	}
}

// Load reads a JSON config file over the defaults. Fields missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds command-line values. A nil field was not set on the command
// line and leaves the config untouched.
type Flags struct {
	Width       *int
	Height      *int
	Frames      *int
	Seed        *uint64
	GridK       *int
	Backend     *string
	OutputDir   *string
	Format      *string
	Supersample *int
	Workers     *int
}

// Resolve applies explicit flags over c.
func (c *Config) Resolve(f Flags) {
	set(&c.Width, f.Width)
	set(&c.Height, f.Height)
	set(&c.Frames, f.Frames)
	set(&c.Seed, f.Seed)
	set(&c.GridHalfExtent, f.GridK)
	set(&c.Backend, f.Backend)
	set(&c.OutputDir, f.OutputDir)
	set(&c.Format, f.Format)
	set(&c.Supersample, f.Supersample)
	set(&c.Workers, f.Workers)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Frames <= 0:
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Frames)
	case c.GridHalfExtent < 0 || c.GridHalfExtent > raydemo.MaxGridHalfExtent:
		return fmt.Errorf("%w: grid half-extent %d outside [0, %d]", ErrInvalid, c.GridHalfExtent, raydemo.MaxGridHalfExtent)
	case c.Throttle < 0:
		return fmt.Errorf("%w: negative throttle %s", ErrInvalid, time.Duration(c.Throttle))
	case c.MaxPasses < 0:
		return fmt.Errorf("%w: max passes %d", ErrInvalid, c.MaxPasses)
	case !slices.Contains(Backends, c.Backend):
		return fmt.Errorf("%w: backend %q (want one of %v)", ErrInvalid, c.Backend, Backends)
	case !slices.Contains(Formats, c.Format):
		return fmt.Errorf("%w: format %q (want one of %v)", ErrInvalid, c.Format, Formats)
	case c.Supersample < 1 || c.Supersample > 4:
		return fmt.Errorf("%w: supersample %d outside [1, 4]", ErrInvalid, c.Supersample)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	case c.OutputDir == "":
		return fmt.Errorf("%w: empty output directory", ErrInvalid)
	}
	return nil
}

// RenderSize returns the size frames are rendered at before downsampling.
func (c Config) RenderSize() (width, height int) {
	return c.Width * c.Supersample, c.Height * c.Supersample
}

// AppOptions converts the loop settings to raydemo options.
func (c Config) AppOptions() []raydemo.Option {
	return []raydemo.Option{
		raydemo.WithSeed(c.Seed),
		raydemo.WithGridHalfExtent(c.GridHalfExtent),
		raydemo.WithThrottle(time.Duration(c.Throttle)),
		raydemo.WithOrbitStep(c.OrbitStep),
		raydemo.WithMaxPasses(c.MaxPasses),
	}
}
