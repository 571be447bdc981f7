package simulation

import (
	"time"

	"github.com/ja7ad/uepsim/pkg/stats"
	"github.com/ja7ad/uepsim/pkg/uep"
)

// blockResult is the outcome of a single block.
type blockResult struct {
	errors    []int
	drops     int
	ripple    float64
	hasRipple bool
	encode    time.Duration
	decode    time.Duration
}

// accumulator keeps running totals and averages over the blocks of one engine.
type accumulator struct {
	ranges []uep.ClassRange
	n      int

	blocks      int
	errorCounts []int
	drops       int
	ripple      stats.WeightedAverage
	encode      stats.WeightedAverage
	decode      stats.WeightedAverage
}

func newAccumulator(ranges []uep.ClassRange, n int) *accumulator {
	return &accumulator{
		ranges:      ranges,
		n:           n,
		errorCounts: make([]int, len(ranges)),
	}
}

// add folds one block into the totals.
func (a *accumulator) add(b blockResult) {
	a.blocks++
	for i, e := range b.errors {
		a.errorCounts[i] += e
	}
	a.drops += b.drops
	if b.hasRipple {
		a.ripple.Add(b.ripple, 1)
	}
	a.encode.Add(b.encode.Seconds(), 1)
	a.decode.Add(b.decode.Seconds(), 1)
}

// enoughErrors reports whether every class reached wanted errors.
func (a *accumulator) enoughErrors(wanted int) bool {
	for _, e := range a.errorCounts {
		if e < wanted {
			return false
		}
	}
	return true
}

func (a *accumulator) result() *Result {
	r := &Result{
		NBlocks:      a.blocks,
		N:            a.n,
		Ks:           make([]int, len(a.ranges)),
		ErrorCounts:  append([]int(nil), a.errorCounts...),
		ErrorRates:   make([]float64, len(a.ranges)),
		DropCount:    a.drops,
		DropRate:     stats.SafeDiv(float64(a.drops), float64(a.blocks*a.n)),
		AvgRipple:    a.ripple.Mean(),
		AvgEncodeSec: a.encode.Mean(),
		AvgDecodeSec: a.decode.Mean(),
	}
	for i, cr := range a.ranges {
		r.Ks[i] = cr.Len()
		r.ErrorRates[i] = stats.SafeDiv(float64(a.errorCounts[i]), float64(a.blocks*cr.Len()))
	}
	return r
}
