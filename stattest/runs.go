package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/simlab/prngkit/common/errors"
)

// Runs runs the Wald-Wolfowitz runs test for serial independence around
// the median. The statistic is the z-score of the observed number of runs
// and the p-value is two-tailed.
func Runs(s *Sample) Result {
	median := s.Median()

	var boundaries, n1, n2 int
	prevAbove := false
	for i, v := range s.values {
		above := v >= median
		if above {
			n1++
		} else {
			n2++
		}
		if i > 0 && above != prevAbove {
			boundaries++
		}
		prevAbove = above
	}

	if n1 == 0 || n2 == 0 {
		return undefined(NameRuns, errors.WithContext(ErrDegenerateInput, fmt.Sprintf("n1=%d n2=%d", n1, n2)))
	}

	runs := float64(boundaries + 1)
	a, b := float64(n1), float64(n2)
	n := a + b
	expected := 2.0*a*b/n + 1.0
	variance := 2.0 * a * b * (2.0*a*b - a - b) / (n * n * (n - 1.0))
	if variance <= 0 {
		return undefined(NameRuns, errors.WithContext(ErrDegenerateInput, "zero variance"))
	}

	z := (runs - expected) / math.Sqrt(variance)
	r := Result{
		Test:      NameRuns,
		Statistic: z,
		PValue:    twoTailed(z),
	}

	logger.Debug("runs",
		"runs", boundaries+1,
		"n1", n1,
		"n2", n2,
		"expected", expected,
		"z", z,
	)

	return r
}

func twoTailed(z float64) float64 {
	return math.Min(1.0, 2.0*distuv.UnitNormal.Survival(math.Abs(z)))
}
