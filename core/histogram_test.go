package core

import (
	"errors"
	"testing"
)

func TestHistogramConservation(t *testing.T) {
	for _, v := range []View{
		testView,
		{CentreReal: 2, PixelSize: 0.5, Scale: 1, Width: 9, Height: 7, MaxIterations: 3},
		{CentreReal: 0, PixelSize: 0.001, Scale: 1, Width: 5, Height: 5, MaxIterations: 50},
		{CentreReal: 2, PixelSize: 0.01, Scale: 1, Width: 1, Height: 1, MaxIterations: 50},
	} {
		h, err := NewHistogram(computed(t, v))
		if err != nil {
			t.Fatal(err)
		}
		if len(h.Bins) != v.MaxIterations || len(h.Counts) != v.MaxIterations {
			t.Fatalf("histogram has %d bins, want %d", len(h.Bins), v.MaxIterations)
		}
		if got := h.Total(); got != uint64(v.Width*v.Height) {
			t.Errorf("%+v: counts add up to %d, want %d", v, got, v.Width*v.Height)
		}
		if h.Counts[h.LowestNonEmptyBin] == 0 {
			t.Errorf("lowest non-empty bin %d is empty", h.LowestNonEmptyBin)
		}
		for b := 0; b < h.LowestNonEmptyBin; b++ {
			if h.Counts[b] != 0 {
				t.Errorf("bin %d below the lowest non-empty bin has %d", b, h.Counts[b])
			}
		}
	}
}

func TestHistogramBins(t *testing.T) {
	g, _ := NewGrid(View{PixelSize: 1, Width: 6, Height: 1, MaxIterations: 5})
	copy(g.rows[0], []float64{0.3, 2.0, 2.9, 3.5, 5, 5})
	h, err := NewHistogram(g)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{1, 2, 1, 0, 2}
	for b, n := range want {
		if h.Counts[b] != n {
			t.Errorf("bin %d: %d, want %d", b, h.Counts[b], n)
		}
		if h.Bins[b] != b+1 {
			t.Errorf("bin %d labelled %d", b, h.Bins[b])
		}
	}
	if h.LowestNonEmptyBin != 0 {
		t.Errorf("lowest bin %d, want 0", h.LowestNonEmptyBin)
	}

	copy(g.rows[0], []float64{3.2, 4, 5, 5, 5, 3.9})
	h, _ = NewHistogram(g)
	if h.LowestNonEmptyBin != 2 {
		t.Errorf("lowest bin %d, want 2", h.LowestNonEmptyBin)
	}

	w := h.WithoutMax()
	if len(w.Counts) != 4 || w.Total() != 3 {
		t.Errorf("without max: %v", w.Counts)
	}
}

func TestHistogramIncomplete(t *testing.T) {
	g, _ := NewGrid(testView)
	if _, err := NewHistogram(g); !errors.Is(err, ErrIncomplete) {
		t.Errorf("histogram of unset grid: %v", err)
	}
}
