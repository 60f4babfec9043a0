package stattest

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/simlab/prngkit/common/errors"
)

// Sample is an immutable, non-empty sequence of finite values together
// with the summary statistics every test needs.
type Sample struct {
	values []float64
	sorted []float64

	mean     float64
	variance float64
}

// NewSample copies the values into a new Sample.
func NewSample(values []float64) (*Sample, error) {
	if len(values) == 0 {
		return nil, ErrEmptySequence
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.WithContext(ErrNonFinite, fmt.Sprintf("index %d: %v", i, v))
		}
	}

	s := &Sample{
		values: append([]float64(nil), values...),
		sorted: append([]float64(nil), values...),
	}
	sort.Float64s(s.sorted)

	// Population variance, matching the normalization by n used by the
	// autocorrelation.
	s.mean, s.variance = stat.PopMeanVariance(s.values, nil)
	if s.variance < 0 {
		s.variance = 0
	}
	if s.Min() == s.Max() {
		s.variance = 0
	}

	return s, nil
}

// Len returns the number of values.
func (s *Sample) Len() int {
	return len(s.values)
}

// Values returns a copy of the values in their original order.
func (s *Sample) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Mean returns the arithmetic mean.
func (s *Sample) Mean() float64 {
	return s.mean
}

// Variance returns the population variance.
func (s *Sample) Variance() float64 {
	return s.variance
}

// Min returns the smallest value.
func (s *Sample) Min() float64 {
	return s.sorted[0]
}

// Max returns the largest value.
func (s *Sample) Max() float64 {
	return s.sorted[len(s.sorted)-1]
}

// Degenerate returns true iff all values are identical.
func (s *Sample) Degenerate() bool {
	return s.Min() == s.Max()
}

// Median returns the median, averaging the two middle values for even
// lengths.
func (s *Sample) Median() float64 {
	return s.Quantile(0.5)
}

// Quantile returns the p-quantile with linear interpolation between the
// closest ranks, h = (n-1)p.
//
// gonum's stat.Quantile implements the empirical CDF definitions, none of
// which reproduces the median/IQR the automatic bin rule is defined on.
func (s *Sample) Quantile(p float64) float64 {
	switch {
	case p <= 0:
		return s.Min()
	case p >= 1:
		return s.Max()
	}

	h := p * float64(len(s.sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(s.sorted) {
		return s.sorted[i]
	}
	return s.sorted[i] + (h-lo)*(s.sorted[i+1]-s.sorted[i])
}
