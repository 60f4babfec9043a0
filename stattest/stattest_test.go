package stattest

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"go.uber.org/multierr"

	"github.com/simlab/prngkit/common/errors"
)

func mustSample(t *testing.T, values []float64) *Sample {
	s, err := NewSample(values)
	require.NoError(t, err, "NewSample")
	return s
}

func ramp(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}

func alternating(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
		if i%2 == 1 {
			v[i] = -1
		}
	}
	return v
}

func TestNewSample(t *testing.T) {
	require := require.New(t)

	_, err := NewSample(nil)
	require.ErrorIs(err, ErrEmptySequence)
	_, err = NewSample([]float64{})
	require.ErrorIs(err, ErrEmptySequence)
	_, err = NewSample([]float64{1, math.NaN()})
	require.ErrorIs(err, ErrNonFinite)
	_, err = NewSample([]float64{math.Inf(-1)})
	require.ErrorIs(err, ErrNonFinite)

	in := []float64{3, 1, 2, 4}
	s := mustSample(t, in)
	in[0] = 100
	require.Equal([]float64{3, 1, 2, 4}, s.Values(), "sample must own its data")
	s.Values()[0] = 100
	require.Equal([]float64{3, 1, 2, 4}, s.Values(), "Values must return a copy")

	require.Equal(4, s.Len())
	require.Equal(1.0, s.Min())
	require.Equal(4.0, s.Max())
	require.Equal(2.5, s.Mean())
	require.InDelta(1.25, s.Variance(), 1e-12, "population variance")
	require.Equal(2.5, s.Median())
	require.Equal(1.75, s.Quantile(0.25))
	require.Equal(3.25, s.Quantile(0.75))
	require.False(s.Degenerate())

	s = mustSample(t, []float64{7, 7, 7})
	require.True(s.Degenerate())
	require.Equal(0.0, s.Variance())
}

func TestAutoBinCount(t *testing.T) {
	require := require.New(t)

	// Sturges wins: ceil(log2(100) + 1).
	require.Equal(8, AutoBinCount(mustSample(t, ramp(100))))
	require.Equal(11, AutoBinCount(mustSample(t, ramp(1000))))
	// A far outlier stretches the Sturges width, Freedman-Diaconis wins.
	require.Equal(1000, AutoBinCount(mustSample(t, append(ramp(999), 99900))))
	require.Equal(1, AutoBinCount(mustSample(t, []float64{2, 2})))
}

func TestAutoBinCountOutliers(t *testing.T) {
	require := require.New(t)

	// A quarter-wide interquartile range next to a single far outlier asks
	// Freedman-Diaconis for 2e8 bins.
	values := make([]float64, 0, 1000)
	for i := 0; i < 750; i++ {
		values = append(values, 0)
	}
	for i := 0; i < 249; i++ {
		values = append(values, 1)
	}
	values = append(values, 1e7)
	s := mustSample(t, values)
	require.Equal(1000, AutoBinCount(s), "capped at the sample length")

	r := ChiSquare(s)
	require.True(r.Defined())
	require.True(r.HasPValue())
	require.True(r.PValue >= 0 && r.PValue <= 1, "p-value in [0, 1]")

	// Overflowing widths are capped too.
	s = mustSample(t, []float64{0, 0, 0, 1e-300, 1e300})
	require.Equal(5, AutoBinCount(s))
}

func TestChiSquare(t *testing.T) {
	require := require.New(t)

	// Each digit 0..9 appears 100 times. The 11 automatic bins leave exactly
	// one bin empty: chi2 = 10 * (100 - 1000/11)^2 / (1000/11) + 1000/11.
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i % 10)
	}
	s := mustSample(t, values)
	require.Equal(11, AutoBinCount(s))

	r := ChiSquare(s)
	require.Equal(NameChiSquare, r.Test)
	require.True(r.Defined())
	require.InDelta(100.0, r.Statistic, 1e-9)
	require.True(r.HasPValue())
	require.Less(r.PValue, 1e-10)
	require.NoError(r.Reason)

	r = ChiSquare(mustSample(t, []float64{1, 1, 1, 1, 1}))
	require.False(r.Defined())
	require.False(r.HasPValue())
	require.ErrorIs(r.Reason, ErrDegenerateInput)
}

func TestChiSquareUniformSource(t *testing.T) {
	require := require.New(t)

	rng := rand.New(rand.NewSource(1))
	values := make([]float64, 5000)
	for i := range values {
		values[i] = float64(rng.Uint32())
	}

	r := ChiSquare(mustSample(t, values))
	require.True(r.Defined())
	require.GreaterOrEqual(r.Statistic, 0.0)
	require.True(r.PValue >= 0 && r.PValue <= 1, "p-value in [0, 1]")
}

func TestChiSquareFrequencyTotals(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("observed and expected totals match", prop.ForAll(
		func(values []float64) bool {
			s, err := NewSample(values)
			if err != nil || s.Degenerate() {
				return true
			}
			for _, mass := range []MassFunc{
				nil,
				func(lo, hi float64) float64 { return (hi - lo) / 2000.0 },
				func(lo, hi float64) float64 { return 0 },
			} {
				observed, expected := chiSquareFrequencies(s, mass)
				if len(observed) != len(expected) {
					return false
				}
				var o, e float64
				for i := range observed {
					o += observed[i]
					e += expected[i]
				}
				if o != float64(s.Len()) || math.Abs(o-e) > 1e-9*o {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

func TestRuns(t *testing.T) {
	require := require.New(t)

	r := Runs(mustSample(t, []float64{1, 1, 1, 1, 1}))
	require.False(r.Defined())
	require.False(r.HasPValue())
	require.ErrorIs(r.Reason, ErrDegenerateInput)

	// n1 = n2 = 1 gives a zero variance.
	r = Runs(mustSample(t, []float64{1, 2}))
	require.False(r.Defined())
	require.ErrorIs(r.Reason, ErrDegenerateInput)

	expectedZ := func(runs, n1, n2 float64) float64 {
		n := n1 + n2
		mean := 2*n1*n2/n + 1
		variance := 2 * n1 * n2 * (2*n1*n2 - n1 - n2) / (n * n * (n - 1))
		return (runs - mean) / math.Sqrt(variance)
	}

	// Alternating values switch sides at every step: 20 runs.
	r = Runs(mustSample(t, alternating(20)))
	require.True(r.Defined())
	require.InDelta(expectedZ(20, 10, 10), r.Statistic, 1e-12)
	require.Greater(r.Statistic, 0.0)
	require.InDelta(2*(1-0.5*math.Erfc(-r.Statistic/math.Sqrt2)), r.PValue, 1e-12)

	// A ramp crosses the median once: 2 runs.
	r = Runs(mustSample(t, ramp(20)))
	require.InDelta(expectedZ(2, 10, 10), r.Statistic, 1e-12)
	require.Less(r.Statistic, 0.0)
	require.Less(r.PValue, 1e-4)

	// Values equal to the median count as above it.
	r = Runs(mustSample(t, []float64{1, 2, 2, 3, 1, 3}))
	require.InDelta(expectedZ(4, 4, 2), r.Statistic, 1e-12)
}

func TestAutocorrelation(t *testing.T) {
	require := require.New(t)

	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 500)
	for i := range values {
		values[i] = rng.Float64() * 1000
	}
	s := mustSample(t, values)

	r, err := Autocorrelation(s, 0)
	require.NoError(err)
	require.InDelta(1.0, r.Statistic, 1e-12, "lag 0 is the sample against itself")
	require.False(r.HasPValue())
	require.ErrorIs(r.Reason, ErrNotApplicable)

	r, err = Autocorrelation(mustSample(t, alternating(100)), DefaultLag)
	require.NoError(err)
	require.InDelta(-0.99, r.Statistic, 1e-12)
	require.True(r.HasPValue())
	require.Less(r.PValue, 1e-10)

	r, err = Autocorrelation(mustSample(t, alternating(100)), 2)
	require.NoError(err)
	require.InDelta(0.98, r.Statistic, 1e-12)

	for _, lag := range []int{-1, 100} {
		_, err = Autocorrelation(mustSample(t, alternating(100)), lag)
		require.ErrorIs(err, ErrInvalidLag, "lag %d", lag)
	}

	r, err = Autocorrelation(mustSample(t, []float64{3, 3, 3}), 1)
	require.NoError(err, "zero variance is undefined, not an error")
	require.False(r.Defined())
	require.ErrorIs(r.Reason, ErrDegenerateInput)
}

func TestKolmogorovSmirnov(t *testing.T) {
	require := require.New(t)

	// Evenly spaced points are as close to uniform as 11 points can be.
	r := KolmogorovSmirnov(mustSample(t, ramp(11)))
	require.InDelta(1.0/11.0, r.Statistic, 1e-12)
	require.Greater(r.PValue, 0.99)

	// Half the mass at each end.
	values := append(make([]float64, 50), make([]float64, 50)...)
	for i := 50; i < 100; i++ {
		values[i] = 1
	}
	r = KolmogorovSmirnov(mustSample(t, values))
	require.InDelta(0.5, r.Statistic, 1e-12)
	require.Less(r.PValue, 1e-10)

	r = KolmogorovSmirnov(mustSample(t, []float64{4, 4}))
	require.False(r.Defined())
	require.ErrorIs(r.Reason, ErrDegenerateInput)
}

func TestKolmogorovSurvival(t *testing.T) {
	require := require.New(t)

	require.InDelta(0.05, kolmogorovSurvival(1.358), 1e-3)
	require.InDelta(0.01, kolmogorovSurvival(1.628), 1e-3)
	require.Equal(1.0, kolmogorovSurvival(0))
	require.InDelta(0.0, kolmogorovSurvival(5), 1e-12)
}

func TestKolmogorovSmirnovShiftInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("D is invariant under a global shift", prop.ForAll(
		func(ints []int64, shift int64) bool {
			if len(ints) == 0 {
				return true
			}
			values := make([]float64, len(ints))
			shifted := make([]float64, len(ints))
			for i, v := range ints {
				values[i] = float64(v)
				shifted[i] = float64(v + shift)
			}
			a := KolmogorovSmirnov(mustSample(t, values))
			b := KolmogorovSmirnov(mustSample(t, shifted))
			if !a.Defined() {
				return !b.Defined()
			}
			return a.Statistic == b.Statistic && a.PValue == b.PValue
		},
		gen.SliceOf(gen.Int64Range(-1<<20, 1<<20)),
		gen.Int64Range(-1<<30, 1<<30),
	))

	properties.TestingRun(t)
}

func TestRegistry(t *testing.T) {
	require := require.New(t)

	require.Equal([]string{
		NameAutocorrelation,
		NameChiSquare,
		NameKolmogorovSmirnov,
		NameRuns,
	}, Names())

	tests := DefaultTests(Options{Lag: DefaultLag})
	require.Len(tests, 4)
	require.Equal(NameChiSquare, tests[0].Name())
	require.Equal(NameRuns, tests[1].Name())
	require.Equal(NameAutocorrelation, tests[2].Name())
	require.Equal(NameKolmogorovSmirnov, tests[3].Name())

	_, err := ByName("spectral", Options{})
	require.ErrorIs(err, ErrUnknownTest)
	module, code := errors.Code(err)
	require.Equal(ModuleName, module)
	require.EqualValues(4, code)

	_, err = Resolve([]string{"KS", "runs"}, Options{})
	require.ErrorIs(err, ErrUnknownTest)
	tests, err = Resolve([]string{"Kolmogorov_Smirnov", "runs"}, Options{})
	require.NoError(err)
	require.Len(tests, 2)
	require.Equal(NameKolmogorovSmirnov, tests[0].Name())

	require.Error(Register(NameRuns, nil), "duplicate registration must fail")
}

func TestBattery(t *testing.T) {
	require := require.New(t)

	s := mustSample(t, ramp(10))
	tests := DefaultTests(Options{Lag: 10})
	tests = append(tests, NewTest("explodes", func(*Sample) (Result, error) {
		panic("boom")
	}))

	results, err := Battery(context.Background(), s, tests)
	require.Error(err)
	require.ErrorIs(err, ErrInvalidLag)
	require.Len(multierr.Errors(err), 2, "lag and panic failures")
	require.Len(results, 5)

	require.Equal(NameChiSquare, results[0].Test)
	require.True(results[0].Defined(), "other tests still run")
	require.Equal(NameRuns, results[1].Test)
	require.True(results[1].Defined())
	require.Equal(NameAutocorrelation, results[2].Test)
	require.False(results[2].Defined())
	require.ErrorIs(results[2].Reason, ErrInvalidLag)
	require.Equal(NameKolmogorovSmirnov, results[3].Test)
	require.True(results[3].Defined())
	require.Equal("explodes", results[4].Test)
	require.False(results[4].Defined())

	// More tests than workers, every other one failing: all rows are
	// filled in test order and no failure cancels the rest.
	var many []Test
	for i := 0; i < 4*runtime.GOMAXPROCS(0)+1; i++ {
		i := i
		many = append(many, NewTest(fmt.Sprintf("t%d", i), func(*Sample) (Result, error) {
			if i%2 == 1 {
				return Result{}, ErrInvalidLag
			}
			return Result{Statistic: float64(i), PValue: math.NaN()}, nil
		}))
	}
	results, err = Battery(context.Background(), s, many)
	require.ErrorIs(err, ErrInvalidLag)
	require.Len(multierr.Errors(err), len(many)/2)
	require.Len(results, len(many))
	for i, r := range results {
		require.Equal(fmt.Sprintf("t%d", i), r.Test)
		require.Equal(i%2 == 0, r.Defined(), r.Test)
		if i%2 == 0 {
			require.Equal(float64(i), r.Statistic)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = Battery(ctx, s, DefaultTests(Options{Lag: 1}))
	require.ErrorIs(err, context.Canceled)
	for _, r := range results {
		require.False(r.Defined())
	}
}
