// Command rayview opens a window with the spinning triangle and the
// path-traced sphere scene stacked in a scrollable page.
//
// Controls: move the pointer over the triangle canvas to move it; drag on
// the ray canvas to orbit (left), pan (right) or zoom (middle); Ctrl+wheel
// zooms; click a sphere to pick it; A adds random spheres; Esc quits.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/raydemo"
	"github.com/gogpu/raydemo/internal/config"
	"github.com/gogpu/raydemo/internal/host"
	"github.com/gogpu/raydemo/internal/viewer"
)

// maxWindowHeight keeps the initial window short enough that the page
// scrolls and the ray canvas starts out of view.
const maxWindowHeight = 600

func main() {
	var (
		configPath  = flag.String("config", "", "path to a JSON config file")
		backendName = flag.String("backend", "", "render backend: auto, gpu or software")
		width       = flag.Int("width", 0, "canvas width in pixels")
		height      = flag.Int("height", 0, "canvas height in pixels")
		seed        = flag.Uint64("seed", 0, "scene seed")
		gridK       = flag.Int("k", 0, "grid half-extent K (0..11)")
		workers     = flag.Int("workers", 0, "software tracing workers (default: GOMAXPROCS)")
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
	var fl config.Flags
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			fl.Backend = backendName
		case "width":
			fl.Width = width
		case "height":
			fl.Height = height
		case "seed":
			fl.Seed = seed
		case "k":
			fl.GridK = gridK
		case "workers":
			fl.Workers = workers
		}
	})
	cfg.Resolve(fl)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, logger); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
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

	if err := app.Start(cfg.Width, cfg.Height); err != nil {
		if !app.Triangle.Ready() && !app.Ray.Ready() {
			return err
		}
		logger.Warn("surface disabled", "err", err)
	}

	page := viewer.NewPage(app, cfg.Width, cfg.Height)
	g := newGame(app, page)

	ebiten.SetWindowTitle("raydemo (" + b.Name + ")")
	ebiten.SetWindowSize(cfg.Width+2*viewer.Margin, min(page.Height(), maxWindowHeight))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
