// Package stattest implements statistical diagnostics over generated
// sequences: chi-square goodness-of-fit, the Wald-Wolfowitz runs test,
// lag-k autocorrelation and the Kolmogorov-Smirnov test.
//
// Every test is a pure function of an immutable Sample. Degenerate input
// (e.g. zero spread) never panics or divides by zero, the affected values
// are reported as undefined (NaN) with the reason attached.
package stattest

import (
	"math"

	"github.com/simlab/prngkit/common/errors"
)

// ModuleName is the statistical test module name.
const ModuleName = "stattest"

var (
	// ErrEmptySequence is the error returned when a sample is built from
	// an empty sequence.
	ErrEmptySequence = errors.New(ModuleName, 1, "stattest: empty sequence")

	// ErrDegenerateInput is the reason attached to results that are
	// undefined for the given input (e.g. zero variance).
	ErrDegenerateInput = errors.New(ModuleName, 2, "stattest: degenerate input")

	// ErrInvalidLag is the error returned when an autocorrelation lag is
	// outside of [0, n).
	ErrInvalidLag = errors.New(ModuleName, 3, "stattest: invalid lag")

	// ErrUnknownTest is the error returned when an unregistered test is
	// requested.
	ErrUnknownTest = errors.New(ModuleName, 4, "stattest: unknown test")

	// ErrNonFinite is the error returned when a sample contains NaN or
	// infinite values.
	ErrNonFinite = errors.New(ModuleName, 5, "stattest: non-finite value")

	// ErrNotApplicable is the reason attached to p-values whose reference
	// distribution does not apply to the input.
	ErrNotApplicable = errors.New(ModuleName, 6, "stattest: p-value not applicable")
)

const (
	// NameChiSquare is the name of the chi-square goodness-of-fit test.
	NameChiSquare = "chi_square"
	// NameRuns is the name of the runs test.
	NameRuns = "runs"
	// NameAutocorrelation is the name of the autocorrelation test.
	NameAutocorrelation = "autocorrelation"
	// NameKolmogorovSmirnov is the name of the Kolmogorov-Smirnov test.
	NameKolmogorovSmirnov = "kolmogorov_smirnov"
)

// Result is the outcome of a single test.
type Result struct {
	// Test is the name of the test.
	Test string
	// Statistic is the test statistic, NaN if undefined.
	Statistic float64
	// PValue is the p-value, NaN if undefined.
	PValue float64
	// Reason explains why the statistic or p-value is undefined.
	Reason error
}

// Defined returns true iff the statistic is defined.
func (r *Result) Defined() bool {
	return !math.IsNaN(r.Statistic)
}

// HasPValue returns true iff the p-value is defined.
func (r *Result) HasPValue() bool {
	return !math.IsNaN(r.PValue)
}

func undefined(test string, reason error) Result {
	return Result{
		Test:      test,
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		Reason:    reason,
	}
}
