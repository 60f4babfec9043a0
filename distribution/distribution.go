package distribution

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/simlab/prngkit/common/errors"
	"github.com/simlab/prngkit/common/logging"
)

var logger = logging.GetLogger(ModuleName)

// Distribution is a seeded sampler with a known distribution function.
type Distribution interface {
	// Kind returns the distribution family.
	Kind() Kind

	// Rand draws the next value.
	Rand() float64

	// CDF returns P(X <= x).
	CDF(x float64) float64

	// Discrete returns true iff the distribution has integer or finite
	// support.
	Discrete() bool
}

// New validates the configuration and returns a distribution seeded with
// the given seed.
func New(cfg *Config, seed uint64) (Distribution, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("initializing distribution",
		"kind", cfg.Kind,
		"seed", seed,
	)

	src := rand.NewSource(seed)
	switch cfg.Kind {
	case KindUniform:
		return &wrapped{
			kind: cfg.Kind,
			d:    distuv.Uniform{Min: cfg.Uniform.A, Max: cfg.Uniform.B, Src: src},
		}, nil
	case KindExponential:
		return &wrapped{
			kind: cfg.Kind,
			d:    distuv.Exponential{Rate: 1 / cfg.Exponential.Scale, Src: src},
		}, nil
	case KindNormal:
		return &wrapped{
			kind: cfg.Kind,
			d:    distuv.Normal{Mu: cfg.Normal.Mu, Sigma: cfg.Normal.Sigma, Src: src},
		}, nil
	case KindPascal:
		return newPascal(cfg.Pascal, src), nil
	case KindBinomial:
		return &wrapped{
			kind: cfg.Kind,
			d:    distuv.Binomial{N: float64(cfg.Binomial.N), P: cfg.Binomial.P, Src: src},
		}, nil
	case KindPoisson:
		return &wrapped{
			kind: cfg.Kind,
			d:    distuv.Poisson{Lambda: cfg.Poisson.Lambda, Src: src},
		}, nil
	case KindEmpiricalDiscrete:
		return newEmpirical(cfg.Empirical, src), nil
	default:
		// Unreachable, Validate rejects unknown kinds.
		return nil, errors.WithContext(ErrUnsupportedDistribution, cfg.Kind.String())
	}
}

// Sample draws n values from the distribution.
func Sample(d Distribution, n int) ([]float64, error) {
	if n <= 0 {
		return nil, errors.WithContext(ErrInvalidParameter, fmt.Sprintf("count must be positive, got %d", n))
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = d.Rand()
	}

	logger.Debug("sampled distribution",
		"kind", d.Kind(),
		"n", n,
	)

	return values, nil
}

type randCDFer interface {
	Rand() float64
	CDF(x float64) float64
}

// wrapped adapts a gonum distribution. Binomial and Poisson are adapted
// the same way, their CDFs already being step functions.
type wrapped struct {
	kind Kind
	d    randCDFer
}

func (c *wrapped) Kind() Kind {
	return c.kind
}

func (c *wrapped) Rand() float64 {
	return c.d.Rand()
}

func (c *wrapped) CDF(x float64) float64 {
	return c.d.CDF(x)
}

func (c *wrapped) Discrete() bool {
	return c.kind.IsDiscrete()
}

// pascal samples the negative binomial distribution as a gamma-Poisson
// mixture: lambda ~ Gamma(n, p/(1-p)), X ~ Poisson(lambda).
type pascal struct {
	cfg   PascalConfig
	src   rand.Source
	gamma distuv.Gamma
}

func newPascal(cfg PascalConfig, src rand.Source) *pascal {
	return &pascal{
		cfg: cfg,
		src: src,
		gamma: distuv.Gamma{
			Alpha: cfg.N,
			Beta:  cfg.P / (1 - cfg.P),
			Src:   src,
		},
	}
}

func (p *pascal) Kind() Kind {
	return KindPascal
}

func (p *pascal) Rand() float64 {
	if p.cfg.P == 1 {
		return 0
	}
	lambda := p.gamma.Rand()
	if lambda <= 0 {
		return 0
	}
	return distuv.Poisson{Lambda: lambda, Src: p.src}.Rand()
}

// CDF is the regularized incomplete beta function I_p(n, k+1).
func (p *pascal) CDF(x float64) float64 {
	if x < 0 {
		return 0
	}
	return mathext.RegIncBeta(p.cfg.N, math.Floor(x)+1, p.cfg.P)
}

func (p *pascal) Discrete() bool {
	return true
}

// empirical draws from a finite set of values.
type empirical struct {
	values []float64
	// support and cumulative are the distinct values in ascending order
	// and their cumulative probabilities.
	support    []float64
	cumulative []float64
	categories distuv.Categorical
}

func newEmpirical(cfg EmpiricalConfig, src rand.Source) *empirical {
	type point struct {
		value, p float64
	}
	points := make([]point, len(cfg.Values))
	for i := range points {
		points[i] = point{cfg.Values[i], cfg.Probabilities[i]}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].value < points[j].value })

	e := &empirical{
		values:     append([]float64(nil), cfg.Values...),
		categories: distuv.NewCategorical(cfg.Probabilities, src),
	}
	var acc float64
	for _, pt := range points {
		acc += pt.p
		if n := len(e.support); n > 0 && e.support[n-1] == pt.value {
			e.cumulative[n-1] = acc
			continue
		}
		e.support = append(e.support, pt.value)
		e.cumulative = append(e.cumulative, acc)
	}
	// Absorb rounding so that the CDF reaches exactly 1.
	e.cumulative[len(e.cumulative)-1] = 1

	return e
}

func (e *empirical) Kind() Kind {
	return KindEmpiricalDiscrete
}

func (e *empirical) Rand() float64 {
	return e.values[int(e.categories.Rand())]
}

func (e *empirical) CDF(x float64) float64 {
	i := sort.Search(len(e.support), func(i int) bool { return e.support[i] > x })
	if i == 0 {
		return 0
	}
	return e.cumulative[i-1]
}

func (e *empirical) Discrete() bool {
	return true
}
