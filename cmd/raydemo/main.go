// Command raydemo renders the path-traced sphere scene and the spinning
// triangle headlessly and writes the frames to disk.
//
// The frame loop runs on simulated 60 Hz ticks, so the ray surface redraws
// at the same throttled rate it would in a browser tab.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/internal/config"
	"github.com/gogpu/raydemo/internal/export"
	"github.com/gogpu/raydemo/internal/host"
)

// tickInterval is the simulated animation frame period.
const tickInterval = time.Second / 60

func main() {
	var (
		configPath  = flag.String("config", "", "path to a JSON config file")
		backendName = flag.String("backend", "", "render backend: auto, gpu or software")
		width       = flag.Int("width", 0, "frame width in pixels")
		height      = flag.Int("height", 0, "frame height in pixels")
		frames      = flag.Int("frames", 0, "number of ray frames to write")
		out         = flag.String("out", "", "output directory")
		format      = flag.String("format", "", "output format: png, webp, tga or gif")
		seed        = flag.Uint64("seed", 0, "scene seed")
		gridK       = flag.Int("k", 0, "grid half-extent K (0..11)")
		supersample = flag.Int("supersample", 0, "render at N times the size and downsample")
		workers     = flag.Int("workers", 0, "tracing and encoding workers (default: GOMAXPROCS)")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	raydemo.SetLogger(logger)
	host.SetLogger(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	// Only flags given on the command line override the file.
	var fl config.Flags
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			fl.Backend = backendName
		case "width":
			fl.Width = width
		case "height":
			fl.Height = height
		case "frames":
			fl.Frames = frames
		case "out":
			fl.OutputDir = out
		case "format":
			fl.Format = format
		case "seed":
			fl.Seed = seed
		case "k":
			fl.GridK = gridK
		case "supersample":
			fl.Supersample = supersample
		case "workers":
			fl.Workers = workers
		}
	})
	cfg.Resolve(fl)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	b, err := host.Open(cfg.Backend, cfg.Workers)
	if err != nil {
		return err
	}
	defer b.Close()

	app, err := raydemo.NewApp(b.Triangle, b.Ray, cfg.AppOptions()...)
	if err != nil {
		b.Destroy()
		return err
	}
	defer app.Destroy()

	rw, rh := cfg.RenderSize()
	if err := app.Start(rw, rh); err != nil {
		if !app.Ray.Ready() {
			return fmt.Errorf("start: %w", err)
		}
		logger.Warn("triangle surface disabled", "err", err)
	}
	app.PointerMove(float32(rw)*0.75, float32(rh)*0.25)

	start := time.Now()
	frames, err := collect(app, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	written, err := write(ctx, cfg, frames)
	if err != nil {
		return err
	}
	if app.Triangle.Ready() {
		if img, err := app.Triangle.Snapshot(); err == nil {
			path, err := export.WriteFile(cfg.OutputDir, "triangle", export.Downsample(img, cfg.Supersample), export.PNG)
			if err != nil {
				return err
			}
			written++
			logger.Debug("triangle written", "path", path)
		}
	}

	p := message.NewPrinter(language.English)
	p.Printf("%s backend: %d frames of %d×%d, %d spheres, %d files in %s (%.1f draws/s simulated, %d draw errors)\n",
		b.Name, len(frames), cfg.Width, cfg.Height, app.Ray.Payload.Scene.Active(),
		written, filepath.Clean(cfg.OutputDir), app.FPS(), app.DrawErrors())
	logger.Info("render finished", "elapsed", elapsed.Round(time.Millisecond))
	return nil
}

// collect ticks the loop on a simulated clock until cfg.Frames ray frames
// have been drawn and read back.
func collect(app *raydemo.AppState, cfg config.Config) ([]*image.RGBA, error) {
	throttleTicks := int(time.Duration(cfg.Throttle)/tickInterval) + 1
	maxTicks := cfg.Frames*throttleTicks + 60

	frames := make([]*image.RGBA, 0, cfg.Frames)
	clock := time.Unix(0, 0)
	for tick := 0; len(frames) < cfg.Frames; tick++ {
		if tick >= maxTicks {
			return frames, fmt.Errorf("ray surface stalled after %d frames (%d draw errors)", len(frames), app.DrawErrors())
		}
		res := app.Tick(clock.Add(time.Duration(tick) * tickInterval))
		if !res.Ray {
			continue
		}
		img, err := app.Ray.Snapshot()
		if err != nil {
			return frames, err
		}
		frames = append(frames, img)
	}
	return frames, nil
}

// write downsamples and encodes frames in parallel. GIF output is a single
// animation instead of one file per frame.
func write(ctx context.Context, cfg config.Config, frames []*image.RGBA) (int, error) {
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return 0, err
	}

	scaled := make([]*image.RGBA, len(frames))
	g, _ := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, img := range frames {
		g.Go(func() error {
			scaled[i] = export.Downsample(img, cfg.Supersample)
			if format == export.GIF {
				return nil
			}
			_, err := export.WriteFile(cfg.OutputDir, fmt.Sprintf("ray_%04d", i), scaled[i], format)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if format != export.GIF {
		return len(frames), nil
	}

	delay := max(int(time.Duration(cfg.Throttle)/(10*time.Millisecond)), 1)
	anim := export.NewAnimation(delay)
	for _, img := range scaled {
		anim.Add(img)
	}
	if _, err := anim.WriteFile(cfg.OutputDir, "ray"); err != nil {
		return 0, err
	}
	return 1, nil
}
