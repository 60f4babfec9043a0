package distribution

import (
	"math"

	"github.com/simlab/prngkit/common/errors"
	"github.com/simlab/prngkit/stattest"
)

const (
	// NameChiSquareFit is the name of the theoretical chi-square fit.
	NameChiSquareFit = "chi_square_fit"
	// NameKolmogorovSmirnovFit is the name of the theoretical
	// Kolmogorov-Smirnov fit.
	NameKolmogorovSmirnovFit = "kolmogorov_smirnov_fit"
)

// Mass returns the probability mass the distribution assigns to [lo, hi).
func Mass(d Distribution) stattest.MassFunc {
	return func(lo, hi float64) float64 {
		below := func(x float64) float64 {
			return d.CDF(math.Nextafter(x, math.Inf(-1)))
		}
		return math.Max(0, below(hi)-below(lo))
	}
}

// ChiSquare tests the sample histogram against the theoretical mass of
// each bin.
func ChiSquare(d Distribution, s *stattest.Sample) stattest.Result {
	return stattest.ChiSquareMass(s, Mass(d))
}

// KolmogorovSmirnov tests the sample against the theoretical distribution
// function.
//
// For the empirical discrete distribution the statistic is the largest gap
// between the sample and theoretical distribution functions over the
// support and the p-value is undefined.
func KolmogorovSmirnov(d Distribution, s *stattest.Sample) stattest.Result {
	e, ok := d.(*empirical)
	if !ok {
		return stattest.KolmogorovSmirnovCDF(s, d.CDF)
	}

	values := s.Values()
	n := float64(len(values))

	var dmax float64
	for _, x := range e.support {
		var count float64
		for _, v := range values {
			if v <= x {
				count++
			}
		}
		dmax = math.Max(dmax, math.Abs(count/n-e.CDF(x)))
	}

	return stattest.Result{
		Test:      stattest.NameKolmogorovSmirnov,
		Statistic: dmax,
		PValue:    math.NaN(),
		Reason:    errors.WithContext(stattest.ErrNotApplicable, "step distribution function"),
	}
}

// Fit runs both goodness-of-fit tests, naming the results apart from the
// battery's distribution-free tests.
func Fit(d Distribution, s *stattest.Sample) []stattest.Result {
	chi2, ks := ChiSquare(d, s), KolmogorovSmirnov(d, s)
	chi2.Test, ks.Test = NameChiSquareFit, NameKolmogorovSmirnovFit
	return []stattest.Result{chi2, ks}
}
