package core

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mikecv/chaos/math"
)

// DefaultSmallJob is the number of cells at or below which a region is
// computed by a single goroutine.
const DefaultSmallJob = 4096

// Scheduler splits regions of a grid amongst goroutines and waits for them.
type Scheduler struct {
	Workers  int  // number of parallel goroutines, 0 means runtime.GOMAXPROCS(0)
	SmallJob int  // regions of at most this many cells use one goroutine, 0 means DefaultSmallJob
	Shuffle  bool // deal rows to goroutines in random order to even out the load

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewScheduler returns a shuffling scheduler using the given number of
// goroutines (0 for one per processor).
func NewScheduler(workers int) *Scheduler {
	return &Scheduler{
		Workers: workers,
		Shuffle: true,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Scheduler) workers(cells int) int {
	small := s.SmallJob
	if small <= 0 {
		small = DefaultSmallJob
	}
	if cells <= small {
		return 1
	}
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (s *Scheduler) order(n int) []int {
	if !s.Shuffle {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return math.RandPermutation(n, s.rnd)
}

// Compute fills every cell of the given regions of g for g.View and returns
// once all of them are written. The regions must be non-empty, inside the
// grid and pairwise disjoint; otherwise nothing is computed. If ctx is
// cancelled the rows not yet started keep their unset value and ctx.Err()
// is returned.
func (s *Scheduler) Compute(ctx context.Context, g *Grid, regions ...Region) error {
	if len(regions) == 0 {
		return fmt.Errorf("%w: no region to compute", ErrValidation)
	}
	if err := g.View.Validate(); err != nil {
		return err
	}
	for i, r := range regions {
		if err := r.within(g.View.Width, g.View.Height); err != nil {
			return err
		}
		for _, q := range regions[:i] {
			if overlap(r, q) {
				return fmt.Errorf("%w: regions %v and %v overlap", ErrValidation, q, r)
			}
		}
	}

	total := 0
	for _, r := range regions {
		total += r.Cells()
	}
	n := s.workers(total)

	var strips []*Strip
	for _, r := range regions {
		rn := n
		if n > 1 {
			// share the workers out in proportion to the region's size
			rn = (n*r.Cells() + total - 1) / total
		}
		strips = append(strips, g.strips(r, rn, s.order(r.RowHi-r.RowLo))...)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(n)
	for _, st := range strips {
		st := st
		eg.Go(func() error {
			return st.fill(ctx)
		})
	}
	return eg.Wait()
}

func overlap(a, b Region) bool {
	return a.RowLo < b.RowHi && b.RowLo < a.RowHi && a.ColLo < b.ColHi && b.ColLo < a.ColHi
}
