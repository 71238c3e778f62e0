package core

import (
	"context"
	"math"
	"math/cmplx"
	"testing"
)

func TestEscapeOutsideRadius(t *testing.T) {
	for _, c := range []complex128{2.5, -3, complex(0, 2.1), complex(1.5, 1.5), 10, complex(-7, 7)} {
		for _, max := range []int{1, 2, 50, 1000} {
			mu := Escape(c, max)
			// z1 = c already escapes, so n = 1
			want := 1.0
			if mod := cmplx.Abs(c); mod > math.E {
				want = 2 - math.Log(math.Log(mod))/math.Log(2)
			}
			want = math.Min(math.Max(want, 0), float64(max))
			if math.Abs(mu-want) > 1e-12 {
				t.Errorf("Escape(%v, %d) = %v, want %v", c, max, mu, want)
			}
			if mu < 0 || mu > 2 {
				t.Errorf("Escape(%v, %d) = %v, should be close to 1", c, max, mu)
			}
		}
	}
}

func TestEscapeInsideSet(t *testing.T) {
	for _, c := range []complex128{0, -1, 0.25, complex(-0.1, 0.1), complex(-1.1, 0.1)} {
		for _, max := range []int{1, 7, 100, 1000} {
			if mu := Escape(c, max); mu != float64(max) {
				t.Errorf("Escape(%v, %d) = %v, want exactly %d", c, max, mu, max)
			}
		}
	}
}

func TestEscapeRange(t *testing.T) {
	max := 64
	for re := -2.5; re <= 1.5; re += 0.037 {
		for im := -1.5; im <= 1.5; im += 0.041 {
			mu := Escape(complex(re, im), max)
			if mu < 0 || mu > float64(max) || mu != mu {
				t.Fatalf("Escape(%v+%vi) = %v out of [0,%d]", re, im, mu, max)
			}
		}
	}
}

func TestEscapeSmoothing(t *testing.T) {
	// c = 1: z = 1, 2 -> escapes on step 2 with |z| = 2 < e, no correction
	if mu := Escape(1, 50); mu != 2 {
		t.Errorf("Escape(1) = %v, want 2", mu)
	}
	// c = 1.5: z = 1.5, 3.75 -> escapes on step 2 with |z| > e
	want := 3 - math.Log(math.Log(3.75))/math.Log(2)
	if mu := Escape(1.5, 50); math.Abs(mu-want) > 1e-12 {
		t.Errorf("Escape(1.5) = %v, want %v", mu, want)
	}
}

func TestSinglePixel(t *testing.T) {
	v := View{CentreReal: 2.0, CentreImag: 0.0, PixelSize: 0.01, Scale: 1, Width: 1, Height: 1, MaxIterations: 50}
	s := newTestSession(t, v)
	if err := s.Recompute(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := s.Read(func(g *Grid) error {
		if mu := g.At(0, 0); math.Abs(mu-1.0) > 1e-9 {
			t.Errorf("single pixel mu = %v, want 1", mu)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
