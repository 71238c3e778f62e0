package main

import (
	"context"
	"errors"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikecv/chaos/config"
	"github.com/mikecv/chaos/core"
	"github.com/mikecv/chaos/rgba"
)

func TestParsePan(t *testing.T) {
	h, v, err := parsePan("3, -7")
	if err != nil || h != 3 || v != -7 {
		t.Errorf("parsePan = %d, %d, %v", h, v, err)
	}
	for _, s := range []string{"", "3", "a,1", "1,2,3"} {
		if _, _, err := parsePan(s); !errors.Is(err, core.ErrValidation) {
			t.Errorf("parsePan(%q): %v", s, err)
		}
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	conf, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	conf.Image.Width, conf.Image.Height = 48, 32
	conf.Calculations.MaxIterations = 50
	conf.Calculations.PixelSize = 1.0 / 16
	conf.Colours.PaletteFile = filepath.Join(t.TempDir(), "none.json")
	conf.Log.File = ""
	return conf
}

func TestPalette(t *testing.T) {
	conf := testConfig(t)
	p, err := palette("", conf, 50)
	if err != nil || p.Boundaries[3].Limit != 50 {
		t.Errorf("default palette %+v, %v", p, err)
	}
	if p, err = palette("fire", conf, 50); err != nil || p.Boundaries[len(p.Boundaries)-1].Limit != 50 {
		t.Errorf("preset %+v, %v", p, err)
	}
	path := filepath.Join(t.TempDir(), "p.json")
	if err := rgba.SavePaletteFile(path, rgba.DefaultPalette(7)); err != nil {
		t.Fatal(err)
	}
	if p, err = palette(path, conf, 50); err != nil || p.Boundaries[3].Limit != 7 {
		t.Errorf("palette file %+v, %v", p, err)
	}
	if _, err = palette("nope", conf, 50); err == nil {
		t.Error("unknown palette accepted")
	}
}

func TestRender(t *testing.T) {
	conf := testConfig(t)
	dir := t.TempDir()
	r := &Render{
		Pan:         "2,1",
		Zoom:        2,
		Supersample: 2,
		Out:         filepath.Join(dir, "out.png"),
		Save:        filepath.Join(dir, "grid.dat.zst"),
		Histogram:   filepath.Join(dir, "hist.png"),
	}
	if err := r.Run(context.Background(), conf, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(r.Out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 32 {
		t.Errorf("image is %v", b)
	}
	g, err := core.LoadGridFile(r.Save)
	if err != nil {
		t.Fatal(err)
	}
	if g.View.Width != 96 || g.View.PixelSize != 1.0/64 || g.View.CentreReal != -0.5+2.0/32 {
		t.Errorf("saved view %+v", g.View)
	}
	if _, err := os.Stat(r.Histogram); err != nil {
		t.Error(err)
	}
}
