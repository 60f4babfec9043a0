package stattest

import (
	"math"

	"github.com/simlab/prngkit/common/errors"
)

// CDF is a cumulative distribution function.
type CDF func(x float64) float64

// KolmogorovSmirnov runs the one-sample Kolmogorov-Smirnov test against the
// continuous uniform distribution spanning [min, max] of the sample. Only
// the shape of the sample is compared, so the result does not depend on
// its location.
func KolmogorovSmirnov(s *Sample) Result {
	if s.Degenerate() {
		return undefined(NameKolmogorovSmirnov, errors.WithContext(ErrDegenerateInput, "all values are identical"))
	}

	lo, span := s.Min(), s.Max()-s.Min()
	return KolmogorovSmirnovCDF(s, func(x float64) float64 {
		return math.Min(1, math.Max(0, (x-lo)/span))
	})
}

// KolmogorovSmirnovCDF runs the one-sample Kolmogorov-Smirnov test against
// the given reference CDF, returning the D statistic and its asymptotic
// p-value.
func KolmogorovSmirnovCDF(s *Sample, cdf CDF) Result {
	n := float64(s.Len())

	var d float64
	for i, x := range s.sorted {
		f := cdf(x)
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}

	sqrtN := math.Sqrt(n)
	return Result{
		Test:      NameKolmogorovSmirnov,
		Statistic: d,
		PValue:    kolmogorovSurvival((sqrtN + 0.12 + 0.11/sqrtN) * d),
	}
}

// kolmogorovSurvival is the complementary CDF of the Kolmogorov
// distribution, Q(l) = 2 sum_{k>=1} (-1)^(k-1) exp(-2 k^2 l^2).
func kolmogorovSurvival(lambda float64) float64 {
	const (
		maxTerms = 100
		epsTerm  = 1e-3
		epsSum   = 1e-8
	)

	a2 := -2.0 * lambda * lambda
	fac, sum, prev := 2.0, 0.0, 0.0
	for k := 1; k <= maxTerms; k++ {
		term := fac * math.Exp(a2*float64(k*k))
		sum += term
		if math.Abs(term) <= epsTerm*prev || math.Abs(term) <= epsSum*sum {
			return math.Min(1, math.Max(0, sum))
		}
		fac = -fac
		prev = math.Abs(term)
	}

	// The series only fails to converge as lambda approaches 0.
	return 1.0
}
