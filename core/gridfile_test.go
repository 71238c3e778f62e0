package core

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestGridRoundTrip(t *testing.T) {
	v := testView
	v.Scale = 3.5
	g := computed(t, v)

	var buf bytes.Buffer
	if err := WriteGrid(&buf, g); err != nil {
		t.Fatal(err)
	}
	if want := 28 + 4*v.Width*v.Height; buf.Len() != want {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), want)
	}
	if w := binary.LittleEndian.Uint32(buf.Bytes()[0:4]); w != uint32(v.Width) {
		t.Fatalf("first field is %d, want width %d", w, v.Width)
	}

	got, err := ReadGrid(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkLoaded(t, got, g)
}

func checkLoaded(t *testing.T, got, orig *Grid) {
	t.Helper()
	ov := orig.View
	want := View{
		CentreReal:    float64(float32(ov.CentreReal)),
		CentreImag:    float64(float32(ov.CentreImag)),
		PixelSize:     float64(float32(ov.PixelSize)),
		Scale:         float64(float32(ov.Scale)),
		Width:         ov.Width,
		Height:        ov.Height,
		MaxIterations: ov.MaxIterations,
	}
	if got.View != want {
		t.Fatalf("loaded view %+v, want %+v", got.View, want)
	}
	for i, mu := range orig.Values() {
		if got.cells[i] != float64(float32(mu)) {
			t.Fatalf("cell %d = %v, want %v", i, got.cells[i], float32(mu))
		}
	}
}

func TestGridFiles(t *testing.T) {
	g := computed(t, testView)
	dir := t.TempDir()
	for _, name := range []string{"grid.dat", "grid.dat.zst"} {
		path := filepath.Join(dir, name)
		if err := SaveGridFile(path, g); err != nil {
			t.Fatal(err)
		}
		got, err := LoadGridFile(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		checkLoaded(t, got, g)
	}
}

func TestReadGridTruncated(t *testing.T) {
	g := computed(t, View{CentreReal: -1, PixelSize: 0.1, Scale: 1, Width: 4, Height: 3, MaxIterations: 10})
	var buf bytes.Buffer
	if err := WriteGrid(&buf, g); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	for _, n := range []int{0, 3, 12, 27, 28, 30, len(data) - 1} {
		if _, err := ReadGrid(bytes.NewReader(data[:n])); !errors.Is(err, ErrFormat) {
			t.Errorf("reading %d of %d bytes: %v, want ErrFormat", n, len(data), err)
		}
	}
}

func TestReadGridBadHeader(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, gridHeader{Width: 2, Height: 2, MaxIterations: 0, PixelSize: 1})
	binary.Write(&buf, binary.LittleEndian, make([]float32, 4))
	if _, err := ReadGrid(&buf); !errors.Is(err, ErrFormat) {
		t.Errorf("zero max iterations: %v", err)
	}

	buf.Reset()
	binary.Write(&buf, binary.LittleEndian, gridHeader{Width: 1, Height: 1, MaxIterations: 5, PixelSize: 1})
	binary.Write(&buf, binary.LittleEndian, []float32{float32(math.NaN())})
	if _, err := ReadGrid(&buf); !errors.Is(err, ErrFormat) {
		t.Errorf("NaN cell: %v", err)
	}

	for _, mu := range []float32{float32(math.Inf(1)), -0.5, 5.25} {
		buf.Reset()
		binary.Write(&buf, binary.LittleEndian, gridHeader{Width: 1, Height: 1, MaxIterations: 5, PixelSize: 1})
		binary.Write(&buf, binary.LittleEndian, []float32{mu})
		if _, err := ReadGrid(&buf); !errors.Is(err, ErrFormat) {
			t.Errorf("cell %v outside [0, 5]: %v", mu, err)
		}
	}
}

func TestWriteIncompleteGrid(t *testing.T) {
	g, _ := NewGrid(testView)
	if err := WriteGrid(&bytes.Buffer{}, g); !errors.Is(err, ErrIncomplete) {
		t.Errorf("writing an unset grid: %v", err)
	}
}

func TestSessionLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.dat")
	other := computed(t, View{CentreReal: 0.25, PixelSize: 0.0625, Scale: 2, Width: 7, Height: 5, MaxIterations: 33})
	if err := SaveGridFile(path, other); err != nil {
		t.Fatal(err)
	}

	s := newTestSession(t, testView)
	if err := s.Recompute(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := s.View()
	if err := s.Load(filepath.Join(t.TempDir(), "missing.dat")); err == nil {
		t.Fatal("loading a missing file should fail")
	}
	if err := s.LoadFrom(bytes.NewReader([]byte{1, 2, 3})); !errors.Is(err, ErrFormat) {
		t.Fatalf("loading garbage: %v", err)
	}
	if s.View() != before || !s.grid.Complete() {
		t.Fatal("failed load changed the session")
	}

	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	checkLoaded(t, s.grid, other)
	h, err := s.Histogram()
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Counts) != 33 || h.Total() != 35 {
		t.Errorf("histogram after load: %d bins, %d cells", len(h.Counts), h.Total())
	}

	// the loaded grid is a full starting point for pans
	if err := s.Pan(context.Background(), 1, -1); err != nil {
		t.Fatal(err)
	}
	if !s.grid.Complete() {
		t.Error("pan after load left unset cells")
	}
}
