package stattest

import (
	"fmt"
	"math"

	"github.com/simlab/prngkit/common/errors"
)

// DefaultLag is the default autocorrelation lag.
const DefaultLag = 1

// Autocorrelation returns the mean-centred autocorrelation of the sample
// at the given lag, normalized by variance*n so that lag 0 is exactly the
// sample's correlation with itself (1).
//
// The p-value uses the large-sample null distribution N(0, 1/n) and is
// undefined at lag 0.
func Autocorrelation(s *Sample, lag int) (Result, error) {
	n := s.Len()
	if lag < 0 || lag >= n {
		return undefined(NameAutocorrelation, nil), errors.WithContext(ErrInvalidLag, fmt.Sprintf("lag %d, n %d", lag, n))
	}
	if s.variance == 0 {
		return undefined(NameAutocorrelation, errors.WithContext(ErrDegenerateInput, "zero variance")), nil
	}

	var acc float64
	for i := 0; i+lag < n; i++ {
		acc += (s.values[i] - s.mean) * (s.values[i+lag] - s.mean)
	}
	rho := acc / (s.variance * float64(n))

	r := Result{
		Test:      NameAutocorrelation,
		Statistic: rho,
		PValue:    math.NaN(),
	}
	switch lag {
	case 0:
		r.Reason = errors.WithContext(ErrNotApplicable, "lag 0")
	default:
		r.PValue = twoTailed(rho * math.Sqrt(float64(n)))
	}

	return r, nil
}
