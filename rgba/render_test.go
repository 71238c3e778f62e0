package rgba

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/mikecv/chaos/core"
)

func computedGrid(t *testing.T, v core.View) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := core.NewScheduler(2).Compute(context.Background(), g, v.Full()); err != nil {
		t.Fatal(err)
	}
	return g
}

var smallView = core.View{CentreReal: -0.5, PixelSize: 1.0 / 16, Scale: 1, Width: 48, Height: 32, MaxIterations: 100}

func TestRender(t *testing.T) {
	g := computedGrid(t, smallView)
	p := DefaultPalette(smallView.MaxIterations)
	img, err := Render(g, p, false)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != smallView.Width || b.Dy() != smallView.Height {
		t.Fatalf("image is %v", b)
	}
	for down := 0; down < smallView.Height; down++ {
		for right := 0; right < smallView.Width; right++ {
			if got, want := img.RGBAAt(right, down), p.Colour(g.At(down, right)); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", right, down, got, want)
			}
		}
	}
	// the centre (-0.5, 0) is inside the set
	c := smallView.Centre()
	if got := img.RGBAAt(c.Right, c.Down); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("centre pixel %v, want the colour of the last boundary", got)
	}
}

func TestRenderBlack(t *testing.T) {
	g := computedGrid(t, smallView)
	h, err := core.NewHistogram(g)
	if err != nil {
		t.Fatal(err)
	}
	img, err := Render(g, Palette{}, true)
	if err != nil {
		t.Fatal(err)
	}
	c := smallView.Centre()
	if got := img.RGBAAt(c.Right, c.Down); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("points inside the set should be white in black mode, got %v", got)
	}
	want := Grey(g.At(0, 0), h.LowestNonEmptyBin, smallView.MaxIterations)
	if got := img.RGBAAt(0, 0); got != want {
		t.Errorf("corner pixel %v, want %v", got, want)
	}
}

func TestRenderIncomplete(t *testing.T) {
	g, _ := core.NewGrid(smallView)
	if _, err := Render(g, DefaultPalette(100), false); !errors.Is(err, core.ErrIncomplete) {
		t.Errorf("rendering an uncomputed grid: %v", err)
	}
}

func TestEncoded(t *testing.T) {
	img, err := Render(computedGrid(t, smallView), DefaultPalette(100), false)
	if err != nil {
		t.Fatal(err)
	}
	b64, err := Encoded(img)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		t.Fatal(err)
	}
	back, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if back.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds %v", back.Bounds())
	}
}

func TestDownscale(t *testing.T) {
	img, err := Render(computedGrid(t, smallView), DefaultPalette(100), false)
	if err != nil {
		t.Fatal(err)
	}
	small := Downscale(img, 24, 16)
	if b := small.Bounds(); b.Dx() != 24 || b.Dy() != 16 {
		t.Errorf("downscaled to %v", b)
	}
}
