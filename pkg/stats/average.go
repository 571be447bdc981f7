package stats

// WeightedAverage keeps a running weighted mean without storing the samples.
//
// The zero value is ready to use (mean 0, total weight 0).
type WeightedAverage struct {
	sumW float64
	mean float64
}

// Add folds sample x with weight w into the running mean:
//
//	mean <- mean*(1 - w/(W+w)) + x*w/(W+w)
//	W    <- W + w
//
// Non-positive weights leave the accumulator untouched.
func (a *WeightedAverage) Add(x, w float64) {
	if w <= 0 {
		return
	}
	newW := a.sumW + w
	f := w / newW
	a.mean = a.mean*(1-f) + x*f
	a.sumW = newW
}

// Mean returns the weighted mean of all samples added so far.
func (a *WeightedAverage) Mean() float64 { return a.mean }

// TotalWeight returns the sum of the weights added so far.
func (a *WeightedAverage) TotalWeight() float64 { return a.sumW }

// SafeDiv returns n/d, or 0 when d is (numerically) zero.
func SafeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}
