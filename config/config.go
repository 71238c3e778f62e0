// Package config loads the chaos settings from a TOML file on top of
// built-in defaults and sets up the program log.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mikecv/chaos/core"
)

// DefaultFile is read when no other configuration file is named.
const DefaultFile = "chaos.toml"

type Image struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

type Calculations struct {
	MaxIterations int     `koanf:"max_iterations"`
	CentreReal    float64 `koanf:"centre_real"`
	CentreImag    float64 `koanf:"centre_imag"`
	PixelSize     float64 `koanf:"pixel_size"`
	Scale         float64 `koanf:"scale"`
	Workers       int     `koanf:"workers"`   // 0 is one per processor
	SmallJob      int     `koanf:"small_job"` // cells computed by a single goroutine
	MaxZoom       float64 `koanf:"max_zoom"`  // largest zoom factor the viewer accepts
}

type Colours struct {
	RenderBlack   bool   `koanf:"render_black"`
	HistLinePlot  bool   `koanf:"hist_line_plot"`
	IncludeMaxIts bool   `koanf:"include_max_its"`
	LogItsCounts  bool   `koanf:"log_its_counts"`
	PaletteFile   string `koanf:"palette_file"`
}

type Log struct {
	File      string `koanf:"file"` // empty logs to stderr only
	MaxSizeMB int    `koanf:"max_size_mb"`
	Backups   int    `koanf:"backups"`
	Debug     bool   `koanf:"debug"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

// Config is the full set of settings.
type Config struct {
	Image        Image        `koanf:"image"`
	Calculations Calculations `koanf:"calculations"`
	Colours      Colours      `koanf:"colours"`
	Log          Log          `koanf:"log"`
	Server       Server       `koanf:"server"`
}

var defaults = map[string]interface{}{
	"image.width":                 800,
	"image.height":                600,
	"calculations.max_iterations": 1000,
	"calculations.centre_real":    -0.5,
	"calculations.centre_imag":    0.0,
	"calculations.pixel_size":     1.0 / 256,
	"calculations.scale":          1.0,
	"calculations.workers":        0,
	"calculations.small_job":      core.DefaultSmallJob,
	"calculations.max_zoom":       25.0,
	"colours.render_black":        false,
	"colours.hist_line_plot":      true,
	"colours.include_max_its":     false,
	"colours.log_its_counts":      true,
	"colours.palette_file":        "palette.json",
	"log.file":                    "chaos.log",
	"log.max_size_mb":             10,
	"log.backups":                 5,
	"log.debug":                   false,
	"server.addr":                 ":8080",
}

// Load returns the defaults overlaid with the settings in the TOML file at
// path. A missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, err
	}
	if path != "" {
		err := k.Load(file.Provider(path), toml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading config %s: %w", path, err)
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
	}
	if err := c.View().Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if !(c.Calculations.MaxZoom > 0) {
		return Config{}, fmt.Errorf("config %s: %w: max zoom %v", path, core.ErrValidation, c.Calculations.MaxZoom)
	}
	return c, nil
}

// View is the starting viewport.
func (c Config) View() core.View {
	return core.View{
		CentreReal:    c.Calculations.CentreReal,
		CentreImag:    c.Calculations.CentreImag,
		PixelSize:     c.Calculations.PixelSize,
		Scale:         c.Calculations.Scale,
		Width:         c.Image.Width,
		Height:        c.Image.Height,
		MaxIterations: c.Calculations.MaxIterations,
	}
}

func (c Config) Scheduler() *core.Scheduler {
	s := core.NewScheduler(c.Calculations.Workers)
	s.SmallJob = c.Calculations.SmallJob
	return s
}

// Logger returns a logger writing to stderr and, when a log file is set, to
// that file, rotated once it reaches the configured size.
func (c Config) Logger() *log.Logger {
	var w io.Writer = os.Stderr
	if c.Log.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB,
			MaxBackups: c.Log.Backups,
			LocalTime:  true,
		})
	}
	return log.New(w, "[chaos] ", log.Ldate|log.Ltime|log.Lmicroseconds)
}
