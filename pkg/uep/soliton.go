package uep

import (
	"math"
	"math/rand"
	"sort"
)

// Soliton is the robust soliton degree distribution over degrees 1..K.
type Soliton struct {
	k   int
	cdf []float64 // cdf[d-1] = P(degree <= d)
}

// NewSoliton builds the robust soliton distribution for block size k:
//
//	S = c * ln(k/delta) * sqrt(k),  pivot = floor(k/S)
//	rho(1) = 1/k,  rho(d) = 1/(d(d-1))
//	tau(d) = S/(d k) for d < pivot,  tau(pivot) = S ln(S/delta)/k
//	mu(d)  = (rho(d) + tau(d)) / beta
//
// pivot is clamped to [1,k] and negative tau terms (tiny k) are dropped.
func NewSoliton(k int, c, delta float64) *Soliton {
	kf := float64(k)
	s := c * math.Log(kf/delta) * math.Sqrt(kf)
	pivot := k
	if s > 0 {
		pivot = int(math.Floor(kf / s))
	}
	pivot = min(max(pivot, 1), k)

	pmf := make([]float64, k)
	for d := 1; d <= k; d++ {
		var rho, tau float64
		if d == 1 {
			rho = 1 / kf
		} else {
			rho = 1 / float64(d*(d-1))
		}
		switch {
		case d < pivot:
			tau = s / (float64(d) * kf)
		case d == pivot:
			tau = math.Max(s*math.Log(s/delta)/kf, 0)
		}
		pmf[d-1] = rho + tau
	}

	cdf := make([]float64, k)
	var sum float64
	for i, p := range pmf {
		sum += p
		cdf[i] = sum
	}
	for i := range cdf {
		cdf[i] /= sum
	}
	cdf[k-1] = 1
	return &Soliton{k: k, cdf: cdf}
}

// K returns the largest degree.
func (s *Soliton) K() int { return s.k }

// PMF returns P(degree == d).
func (s *Soliton) PMF(d int) float64 {
	if d < 1 || d > s.k {
		return 0
	}
	if d == 1 {
		return s.cdf[0]
	}
	return s.cdf[d-1] - s.cdf[d-2]
}

// Sample draws a degree in [1,K].
func (s *Soliton) Sample(rng *rand.Rand) int {
	u := rng.Float64()
	i := sort.Search(len(s.cdf), func(i int) bool { return s.cdf[i] > u })
	if i == len(s.cdf) {
		i = len(s.cdf) - 1
	}
	return i + 1
}
