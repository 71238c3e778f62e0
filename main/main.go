// Package main generates the executable. It serves the interactive viewer,
// renders single frames from the command line and writes palette files.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/profile"

	"github.com/mikecv/chaos/config"
	"github.com/mikecv/chaos/core"
	"github.com/mikecv/chaos/rgba"
	"github.com/mikecv/chaos/ui"
)

// Serve starts the browser viewer.
type Serve struct {
	Addr string `arg:"--addr" help:"listen address, overrides server.addr"`
}

// Render computes one frame and writes it as a PNG.
type Render struct {
	Load        string  `arg:"--load" help:"start from a saved grid (.dat or .dat.zst)"`
	Pan         string  `arg:"--pan" help:"move the centre by h,v pixels"`
	Zoom        float64 `arg:"--zoom" default:"1" help:"zoom factor"`
	Iterations  int     `arg:"--iterations" help:"maximum iterations, overrides calculations.max_iterations"`
	Black       bool    `arg:"--black" help:"render in black mode"`
	Palette     string  `arg:"--palette" help:"palette file or preset name"`
	Supersample int     `arg:"--supersample" default:"1" help:"compute at this many times the resolution and scale down"`
	Out         string  `arg:"--out" default:"chaos.png" help:"image file to write"`
	Save        string  `arg:"--save" help:"also save the grid here (.zst to compress)"`
	Histogram   string  `arg:"--histogram" help:"also draw the divergence histogram here"`
}

// PaletteCmd writes a palette file.
type PaletteCmd struct {
	Out        string `arg:"--out,required" help:"palette file to write"`
	Preset     string `arg:"--preset" default:"default" help:"palette preset"`
	Iterations int    `arg:"--iterations" help:"maximum iterations the limits are spread over, overrides calculations.max_iterations"`
}

type Cli struct {
	Config  string      `arg:"--config" default:"chaos.toml" help:"configuration file"`
	Profile string      `arg:"--profile" help:"write a cpu, mem or trace profile"`
	Serve   *Serve      `arg:"subcommand:serve" help:"start the viewer"`
	Render  *Render     `arg:"subcommand:render" help:"render one frame"`
	Palette *PaletteCmd `arg:"subcommand:palette" help:"write a palette file"`
}

var args Cli

func main() {
	p := arg.MustParse(&args)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand: serve, render or palette")
	}

	conf, err := config.Load(args.Config)
	if err != nil {
		log.Fatal(err)
	}
	logger := conf.Logger()
	log.SetOutput(logger.Writer())
	log.SetFlags(logger.Flags())
	log.SetPrefix(logger.Prefix())

	switch args.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	case "trace":
		defer profile.Start(profile.TraceProfile).Stop()
	default:
		p.Fail("unknown profile " + args.Profile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case args.Serve != nil:
		err = args.Serve.Run(ctx, conf, logger)
	case args.Render != nil:
		err = args.Render.Run(ctx, conf, logger)
	case args.Palette != nil:
		err = args.Palette.Run(conf, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Print(err)
		stop()
		os.Exit(1)
	}
}

func newSession(conf config.Config, logger *log.Logger) (*core.Session, error) {
	sess, err := core.NewSession(conf.View(), conf.Scheduler())
	if err != nil {
		return nil, err
	}
	sess.Logger = logger
	sess.Debug = conf.Log.Debug
	return sess, nil
}

// Run serves the viewer until ctx is done.
func (s *Serve) Run(ctx context.Context, conf config.Config, logger *log.Logger) error {
	sess, err := newSession(conf, logger)
	if err != nil {
		return err
	}
	ps := rgba.NewPaletteStore(rgba.DefaultPalette(conf.Calculations.MaxIterations))
	ps.Logger = logger
	if path := conf.Colours.PaletteFile; path != "" {
		if _, err := os.Stat(path); err == nil {
			ps.Reload(path)
		}
		go func() {
			if err := ps.Watch(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("not watching palette file %s: %v", path, err)
			}
		}()
	}

	addr := conf.Server.Addr
	if s.Addr != "" {
		addr = s.Addr
	}
	srv := ui.New(sess, ps, ui.Options{
		MaxZoom: conf.Calculations.MaxZoom,
		Black:   conf.Colours.RenderBlack,
		Chart:   chartOptions(conf),
	})
	srv.Logger = logger
	return srv.ListenAndServe(ctx, addr)
}

func chartOptions(conf config.Config) ui.ChartOptions {
	return ui.ChartOptions{
		IncludeMax: conf.Colours.IncludeMaxIts,
		Log:        conf.Colours.LogItsCounts,
		Line:       conf.Colours.HistLinePlot,
	}
}

// parsePan reads "h,v".
func parsePan(s string) (h, v int, err error) {
	w := strings.Split(s, ",")
	if len(w) != 2 {
		return 0, 0, fmt.Errorf("%w: pan %q, want h,v", core.ErrValidation, s)
	}
	if h, err = strconv.Atoi(strings.TrimSpace(w[0])); err != nil {
		return 0, 0, fmt.Errorf("%w: pan %q: %v", core.ErrValidation, s, err)
	}
	if v, err = strconv.Atoi(strings.TrimSpace(w[1])); err != nil {
		return 0, 0, fmt.Errorf("%w: pan %q: %v", core.ErrValidation, s, err)
	}
	return h, v, nil
}

// palette resolves name as a palette file, then as a preset. An empty name
// is the configured palette file if there is one, else the default palette.
func palette(name string, conf config.Config, max int) (rgba.Palette, error) {
	if name == "" {
		name = conf.Colours.PaletteFile
		if _, err := os.Stat(name); name == "" || err != nil {
			return rgba.DefaultPalette(max), nil
		}
	}
	p, err := rgba.LoadPaletteFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return rgba.Preset(name, max)
	}
	return p, err
}

// Run renders the frame.
func (r *Render) Run(ctx context.Context, conf config.Config, logger *log.Logger) error {
	if r.Supersample < 1 {
		return fmt.Errorf("%w: supersample %d", core.ErrValidation, r.Supersample)
	}
	sess, err := newSession(conf, logger)
	if err != nil {
		return err
	}
	computed := false
	if r.Load != "" {
		if err := sess.Load(r.Load); err != nil {
			return err
		}
		computed = true
	}
	if r.Iterations != 0 {
		if err := sess.SetMaxIterations(ctx, r.Iterations); err != nil {
			return err
		}
		computed = true
	}
	if r.Zoom != 1 {
		if err := sess.Zoom(ctx, r.Zoom); err != nil {
			return err
		}
		computed = true
	}
	if r.Pan != "" {
		h, v, err := parsePan(r.Pan)
		if err != nil {
			return err
		}
		if err := sess.Pan(ctx, h, v); err != nil {
			return err
		}
		computed = true
	}

	v := sess.View()
	if r.Supersample > 1 {
		big := v
		big.Width *= r.Supersample
		big.Height *= r.Supersample
		big.PixelSize /= float64(r.Supersample)
		if err := sess.Reset(ctx, big); err != nil {
			return err
		}
		computed = true
	}
	if !computed {
		if err := sess.Recompute(ctx); err != nil {
			return err
		}
	}

	p, err := palette(r.Palette, conf, v.MaxIterations)
	if err != nil {
		return err
	}
	var img image.Image
	if err := sess.Read(func(g *core.Grid) error {
		rendered, err := rgba.Render(g, p, r.Black || conf.Colours.RenderBlack)
		img = rendered
		return err
	}); err != nil {
		return err
	}
	if r.Supersample > 1 {
		img = rgba.Downscale(img, v.Width, v.Height)
	}
	if err := writePNG(r.Out, img); err != nil {
		return err
	}
	logger.Printf("wrote %s (%dx%d) in %v", r.Out, v.Width, v.Height, sess.Elapsed())

	if r.Save != "" {
		if err := sess.Save(r.Save); err != nil {
			return err
		}
	}
	if r.Histogram != "" {
		h, err := sess.Histogram()
		if err != nil {
			return err
		}
		f, err := os.Create(r.Histogram)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := ui.HistogramChart(f, h, chartOptions(conf)); err != nil {
			return err
		}
		logger.Printf("wrote histogram %s", r.Histogram)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Run writes the palette file.
func (c *PaletteCmd) Run(conf config.Config, logger *log.Logger) error {
	max := conf.Calculations.MaxIterations
	if c.Iterations != 0 {
		max = c.Iterations
	}
	p, err := rgba.Preset(c.Preset, max)
	if err != nil {
		return err
	}
	ps := rgba.NewPaletteStore(p)
	ps.Logger = logger
	return ps.Save(c.Out)
}
