package stats

import (
	"fmt"

	"gonum.org/v1/gonum/mathext"
)

// DefaultConfidence is the confidence level used for PER error bars.
const DefaultConfidence = 0.95

// BernoulliCI returns the two-sided exact (Clopper-Pearson) confidence
// interval for the success probability of n Bernoulli trials with z
// successes, at confidence level gamma.
//
// The bounds are built from
//
//	L(z) = n1*F / (n2 + n1*F),  n1 = 2(z+1), n2 = 2(n-z)
//
// where F is the (1-alpha)-quantile of the F(n1, n2) distribution and
// alpha = (1+gamma)/2. lower = L(z-1) (0 when z == 0) and upper = 1 - L(n-z).
func BernoulliCI(z, n int, gamma float64) (lower, upper float64, err error) {
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: n=%d, need n >= 2", ErrInvalidParameters, n)
	}
	if z < 0 || z > n {
		return 0, 0, fmt.Errorf("%w: z=%d outside [0,%d]", ErrInvalidParameters, z, n)
	}
	if !(gamma >= 0 && gamma <= 1) {
		return 0, 0, fmt.Errorf("%w: gamma=%v outside [0,1]", ErrInvalidParameters, gamma)
	}

	alpha := (1 + gamma) / 2
	bound := func(z int) float64 {
		if z == 0 {
			return 0
		}
		return phi(n, z-1, alpha)
	}
	return bound(z), 1 - bound(n-z), nil
}

// phi evaluates n1*F/(n2+n1*F) with F the (1-alpha)-quantile of F(n1, n2).
//
// If X ~ F(n1, n2) then n1X/(n2+n1X) ~ Beta(n1/2, n2/2), so the transformed
// quantile is the Beta(z+1, n-z) quantile at 1-alpha.
func phi(n, z int, alpha float64) float64 {
	p := 1 - alpha
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	return mathext.InvRegIncBeta(float64(z+1), float64(n-z), p)
}

// SuccessErr returns asymmetric error bars around the point estimate z/n,
// i.e. (z/n - lower, upper - z/n) for the DefaultConfidence interval.
func SuccessErr(z, n int) (below, above float64, err error) {
	lo, up, err := BernoulliCI(z, n, DefaultConfidence)
	if err != nil {
		return 0, 0, err
	}
	est := float64(z) / float64(n)
	return est - lo, up - est, nil
}
