package stattest

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/simlab/prngkit/common/errors"
)

// MinExpectedFrequency is the floor applied to theoretical expected
// frequencies so that empty bins never divide by zero.
const MinExpectedFrequency = 1e-8

// MassFunc returns the probability that a value falls in [lo, hi).
type MassFunc func(lo, hi float64) float64

// AutoBinCount returns the number of equal-width bins for the sample: the
// smaller of the Sturges and Freedman-Diaconis bin widths (the latter only
// when the interquartile range is non-zero) over the sample range.
//
// The count never exceeds the sample length. Far outliers next to a narrow
// interquartile range would otherwise ask for billions of mostly empty bins.
func AutoBinCount(s *Sample) int {
	span := s.Max() - s.Min()
	if span == 0 {
		return 1
	}

	n := float64(s.Len())
	width := span / (math.Log2(n) + 1.0)
	iqr := s.Quantile(0.75) - s.Quantile(0.25)
	if fd := 2.0 * iqr * math.Pow(n, -1.0/3.0); fd > 0 && fd < width {
		width = fd
	}

	bins := math.Ceil(span / width)
	switch {
	case bins < 1:
		return 1
	case bins > n:
		logger.Info("bin count capped at the sample length",
			"bins", bins,
			"n", s.Len(),
			"iqr", iqr,
			"span", span,
		)
		return s.Len()
	default:
		return int(bins)
	}
}

// histogram buckets the sample into AutoBinCount equal-width bins over
// [min, max], the last bin being closed.
func (s *Sample) histogram() (dividers, counts []float64) {
	bins := AutoBinCount(s)
	dividers = floats.Span(make([]float64, bins+1), s.Min(), s.Max())
	// stat.Histogram treats the upper divider as exclusive.
	dividers[bins] = math.Nextafter(s.Max(), math.Inf(1))

	counts = stat.Histogram(nil, dividers, s.sorted, nil)
	return dividers, counts
}

// chiSquareFrequencies returns the observed and expected frequency vectors
// with the expected vector rescaled to the observed total.
func chiSquareFrequencies(s *Sample, mass MassFunc) (observed, expected []float64) {
	dividers, observed := s.histogram()

	expected = make([]float64, len(observed))
	switch mass {
	case nil:
		// Flat baseline.
		mean := floats.Sum(observed) / float64(len(observed))
		for i := range expected {
			expected[i] = mean
		}
	default:
		n := float64(s.Len())
		for i := range expected {
			expected[i] = math.Max(mass(dividers[i], dividers[i+1])*n, MinExpectedFrequency)
		}
	}

	observedSum, expectedSum := floats.Sum(observed), floats.Sum(expected)
	if expectedSum != 0 && observedSum != expectedSum {
		floats.Scale(observedSum/expectedSum, expected)
	}

	return observed, expected
}

// ChiSquare runs Pearson's chi-square goodness-of-fit test of the sample
// histogram against a flat distribution.
func ChiSquare(s *Sample) Result {
	return ChiSquareMass(s, nil)
}

// ChiSquareMass runs Pearson's chi-square goodness-of-fit test of the
// sample histogram against the distribution with the given bin mass. A nil
// mass function selects the flat distribution.
func ChiSquareMass(s *Sample, mass MassFunc) Result {
	if s.Degenerate() {
		return undefined(NameChiSquare, errors.WithContext(ErrDegenerateInput, "all values are identical"))
	}

	observed, expected := chiSquareFrequencies(s, mass)

	var chi2 float64
	for i, o := range observed {
		if expected[i] == 0 {
			continue
		}
		d := o - expected[i]
		chi2 += d * d / expected[i]
	}

	r := Result{
		Test:      NameChiSquare,
		Statistic: chi2,
		PValue:    math.NaN(),
	}

	df := len(observed) - 1
	if df < 1 {
		r.Reason = errors.WithContext(ErrDegenerateInput, "single bin")
		return r
	}
	r.PValue = distuv.ChiSquared{K: float64(df)}.Survival(chi2)

	logger.Debug("chi-square",
		"bins", len(observed),
		"statistic", chi2,
		"p_value", r.PValue,
	)

	return r
}
