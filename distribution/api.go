// Package distribution implements sampling from named probability
// distributions and goodness-of-fit testing against their theoretical
// distribution functions.
package distribution

import (
	"fmt"
	"math"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/simlab/prngkit/common/errors"
)

// ModuleName is the distribution module name.
const ModuleName = "distribution"

var (
	// ErrUnsupportedDistribution is the error returned when an unrecognized
	// distribution is requested.
	ErrUnsupportedDistribution = errors.New(ModuleName, 1, "distribution: unsupported distribution")

	// ErrInvalidParameter is the error returned when a distribution
	// parameter is out of range.
	ErrInvalidParameter = errors.New(ModuleName, 2, "distribution: invalid parameter")

	_ flag.Value = (*Kind)(nil)
)

// Kind is a named distribution family.
type Kind uint8

const (
	// KindUniform is the continuous uniform distribution on [a, b).
	KindUniform Kind = iota
	// KindExponential is the exponential distribution with the given scale.
	KindExponential
	// KindNormal is the normal distribution.
	KindNormal
	// KindPascal is the negative binomial distribution, counting failures
	// before the n-th success.
	KindPascal
	// KindBinomial is the binomial distribution.
	KindBinomial
	// KindPoisson is the Poisson distribution.
	KindPoisson
	// KindEmpiricalDiscrete draws from a finite set of values with the
	// given probabilities.
	KindEmpiricalDiscrete

	numKinds
)

var kindNames = [numKinds]string{
	KindUniform:           "uniform",
	KindExponential:       "exponential",
	KindNormal:            "normal",
	KindPascal:            "pascal",
	KindBinomial:          "binomial",
	KindPoisson:           "poisson",
	KindEmpiricalDiscrete: "empirical_discrete",
}

// Kinds returns all supported distributions in canonical order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindFromString resolves a distribution by name.
func KindFromString(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, errors.WithContext(ErrUnsupportedDistribution, fmt.Sprintf("'%s' (use %s)", s, strings.Join(kindNames[:], ", ")))
}

// IsValid returns true iff the kind is one of the supported distributions.
func (k Kind) IsValid() bool {
	return k < numKinds
}

// IsDiscrete returns true iff the distribution has integer or finite
// support.
func (k Kind) IsDiscrete() bool {
	switch k {
	case KindPascal, KindBinomial, KindPoisson, KindEmpiricalDiscrete:
		return true
	default:
		return false
	}
}

// String returns the canonical name of the distribution.
func (k Kind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("[unknown distribution: %d]", uint8(k))
	}
	return kindNames[k]
}

// MarshalText encodes a Kind into text form.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, errors.WithContext(ErrUnsupportedDistribution, k.String())
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a text slice into a Kind.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := KindFromString(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Set sets the Kind to the value specified by the provided string.
func (k *Kind) Set(s string) error {
	return k.UnmarshalText([]byte(s))
}

// Type returns the list of supported Kinds.
func (k *Kind) Type() string {
	return "[" + strings.Join(kindNames[:], ",") + "]"
}

// UniformConfig holds the uniform distribution parameters.
type UniformConfig struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

// ExponentialConfig holds the exponential distribution parameters.
type ExponentialConfig struct {
	// Scale is the mean, the inverse of the rate.
	Scale float64 `yaml:"scale"`
}

// NormalConfig holds the normal distribution parameters.
type NormalConfig struct {
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

// PascalConfig holds the negative binomial distribution parameters.
type PascalConfig struct {
	// N is the number of successes, not necessarily integral.
	N float64 `yaml:"n"`
	// P is the success probability.
	P float64 `yaml:"p"`
}

// BinomialConfig holds the binomial distribution parameters.
type BinomialConfig struct {
	N uint64  `yaml:"n"`
	P float64 `yaml:"p"`
}

// PoissonConfig holds the Poisson distribution parameters.
type PoissonConfig struct {
	Lambda float64 `yaml:"lambda"`
}

// EmpiricalConfig holds the empirical discrete distribution parameters.
type EmpiricalConfig struct {
	Values        []float64 `yaml:"values"`
	Probabilities []float64 `yaml:"probabilities"`
}

// Validate validates the empirical distribution parameters.
func (c *EmpiricalConfig) Validate() error {
	if len(c.Values) == 0 {
		return errors.WithContext(ErrInvalidParameter, "empirical: no values")
	}
	if len(c.Values) != len(c.Probabilities) {
		return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("empirical: %d values, %d probabilities", len(c.Values), len(c.Probabilities)))
	}

	var sum float64
	for i, p := range c.Probabilities {
		if !isFinite(c.Values[i]) {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("empirical: value %d is not finite", i))
		}
		if !isFinite(p) || p < 0 {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("empirical: probability %d is %v", i, p))
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("empirical: probabilities sum to %v", sum))
	}
	return nil
}

// Config selects a distribution and carries the parameters of every
// family. Only the selected family's parameters are used.
type Config struct {
	// Kind is the distribution family.
	Kind Kind `yaml:"kind"`

	Uniform     UniformConfig     `yaml:"uniform"`
	Exponential ExponentialConfig `yaml:"exponential"`
	Normal      NormalConfig      `yaml:"normal"`
	Pascal      PascalConfig      `yaml:"pascal"`
	Binomial    BinomialConfig    `yaml:"binomial"`
	Poisson     PoissonConfig     `yaml:"poisson"`
	Empirical   EmpiricalConfig   `yaml:"empirical_discrete"`
}

// Validate validates the parameters of the selected distribution.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindUniform:
		if !isFinite(c.Uniform.A) || !isFinite(c.Uniform.B) || c.Uniform.A >= c.Uniform.B {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("uniform: need a < b, got [%v, %v)", c.Uniform.A, c.Uniform.B))
		}
	case KindExponential:
		if !isFinite(c.Exponential.Scale) || c.Exponential.Scale <= 0 {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("exponential: scale must be positive, got %v", c.Exponential.Scale))
		}
	case KindNormal:
		if !isFinite(c.Normal.Mu) || !isFinite(c.Normal.Sigma) || c.Normal.Sigma <= 0 {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("normal: sigma must be positive, got %v", c.Normal.Sigma))
		}
	case KindPascal:
		if !isFinite(c.Pascal.N) || c.Pascal.N <= 0 {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("pascal: n must be positive, got %v", c.Pascal.N))
		}
		if !(c.Pascal.P > 0 && c.Pascal.P <= 1) {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("pascal: p must be in (0, 1], got %v", c.Pascal.P))
		}
	case KindBinomial:
		if c.Binomial.N == 0 {
			return errors.WithContext(ErrInvalidParameter, "binomial: n must be positive")
		}
		if !(c.Binomial.P >= 0 && c.Binomial.P <= 1) {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("binomial: p must be in [0, 1], got %v", c.Binomial.P))
		}
	case KindPoisson:
		if !isFinite(c.Poisson.Lambda) || c.Poisson.Lambda <= 0 {
			return errors.WithContext(ErrInvalidParameter, fmt.Sprintf("poisson: lambda must be positive, got %v", c.Poisson.Lambda))
		}
	case KindEmpiricalDiscrete:
		return c.Empirical.Validate()
	default:
		return errors.WithContext(ErrUnsupportedDistribution, c.Kind.String())
	}
	return nil
}

// DefaultConfig returns the default configuration for the given
// distribution.
func DefaultConfig(k Kind) Config {
	return Config{
		Kind:        k,
		Uniform:     UniformConfig{A: 0, B: 1},
		Exponential: ExponentialConfig{Scale: 1},
		Normal:      NormalConfig{Mu: 0, Sigma: 1},
		Pascal:      PascalConfig{N: 1, P: 0.5},
		Binomial:    BinomialConfig{N: 1, P: 0.5},
		Poisson:     PoissonConfig{Lambda: 1},
		Empirical: EmpiricalConfig{
			Values:        []float64{0, 1},
			Probabilities: []float64{0.5, 0.5},
		},
	}
}

// Presets returns one configuration per distribution with the parameters
// used for side-by-side comparison.
func Presets() []Config {
	presets := make([]Config, 0, numKinds)
	for _, k := range Kinds() {
		cfg := DefaultConfig(k)
		switch k {
		case KindPascal:
			cfg.Pascal = PascalConfig{N: 10, P: 0.5}
		case KindBinomial:
			cfg.Binomial = BinomialConfig{N: 10, P: 0.5}
		case KindPoisson:
			cfg.Poisson = PoissonConfig{Lambda: 5}
		}
		presets = append(presets, cfg)
	}
	return presets
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
