package main

import (
	"errors"
	"fmt"

	"github.com/ja7ad/uepsim/pkg/simulation"
	"github.com/ja7ad/uepsim/pkg/stats"
)

// sweep returns the overheads to run: the repeated --overhead values, a
// linear sweep, or fallback when neither is given.
func sweep(o opts, changed func(string) bool, fallback float64) ([]float64, error) {
	ranged := changed("overhead-min") || changed("overhead-max") || changed("overhead-steps")
	switch {
	case ranged && len(o.overheads) > 0:
		return nil, errors.New("--overhead excludes --overhead-min/--overhead-max/--overhead-steps")
	case ranged:
		if o.overheadSteps < 1 {
			return nil, fmt.Errorf("--overhead-steps must be >= 1, got %d", o.overheadSteps)
		}
		if o.overheadMax < o.overheadMin {
			return nil, fmt.Errorf("--overhead-max %g below --overhead-min %g", o.overheadMax, o.overheadMin)
		}
		return linspace(o.overheadMin, o.overheadMax, o.overheadSteps), nil
	case len(o.overheads) > 0:
		return o.overheads, nil
	default:
		return []float64{fallback}, nil
	}
}

// linspace returns n evenly spaced values over [lo, hi], both included.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// classPoint is the error rate of one class with its confidence interval.
type classPoint struct {
	K      int     `json:"k"`
	Errors int     `json:"errors"`
	Rate   float64 `json:"rate"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Below  float64 `json:"err_below"` // Rate - Lower
	Above  float64 `json:"err_above"` // Upper - Rate
}

// point is one row of the report.
type point struct {
	Overhead  float64      `json:"overhead"`
	N         int          `json:"n"`
	NBlocks   int          `json:"nblocks"`
	Classes   []classPoint `json:"classes"`
	DropRate  float64      `json:"drop_rate"`
	AvgRipple float64      `json:"avg_ripple"`
	EncodeSec float64      `json:"avg_encode_sec"`
	DecodeSec float64      `json:"avg_decode_sec"`
}

func newPoint(overhead float64, r *simulation.Result) point {
	p := point{
		Overhead:  overhead,
		N:         r.N,
		NBlocks:   r.NBlocks,
		Classes:   make([]classPoint, len(r.Ks)),
		DropRate:  r.DropRate,
		AvgRipple: r.AvgRipple,
		EncodeSec: r.AvgEncodeSec,
		DecodeSec: r.AvgDecodeSec,
	}
	for i, k := range r.Ks {
		cp := classPoint{K: k, Errors: r.ErrorCounts[i], Rate: r.ErrorRates[i], Upper: 1}
		trials := r.NBlocks * k
		if below, above, err := stats.SuccessErr(r.ErrorCounts[i], trials); err == nil {
			est := float64(r.ErrorCounts[i]) / float64(trials)
			cp.Below, cp.Above = below, above
			cp.Lower, cp.Upper = est-below, est+above
		}
		p.Classes[i] = cp
	}
	return p
}
