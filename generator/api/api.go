// Package api implements the pseudo-random number generator API.
package api

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/simlab/prngkit/common/errors"
)

// ModuleName is the generator module name.
const ModuleName = "generator"

var (
	// ErrUnsupportedMethod is the error returned when an unrecognized
	// generation method is requested.
	ErrUnsupportedMethod = errors.New(ModuleName, 1, "generator: unsupported method")

	// ErrInvalidCount is the error returned when a non-positive number of
	// values is requested.
	ErrInvalidCount = errors.New(ModuleName, 2, "generator: count must be positive")

	// ErrInvalidParameter is the error returned when an algorithm parameter
	// is out of range.
	ErrInvalidParameter = errors.New(ModuleName, 3, "generator: invalid parameter")

	_ flag.Value = (*Method)(nil)
)

// Method is a generation algorithm.
type Method uint8

const (
	// MethodMiddleSquare is von Neumann's middle-square method over
	// 4-digit states.
	MethodMiddleSquare Method = iota
	// MethodLCG is the linear congruential generator.
	MethodLCG
	// MethodMersenneTwister delegates to the host's general-purpose
	// generator, kept under its historical name.
	MethodMersenneTwister
	// MethodXorShift is Marsaglia's 32-bit xor-shift generator.
	MethodXorShift

	numMethods
)

var methodNames = [numMethods]string{
	MethodMiddleSquare:    "middle_square",
	MethodLCG:             "lcg",
	MethodMersenneTwister: "mersenne_twister",
	MethodXorShift:        "xorshift",
}

// Methods returns all supported methods in canonical order.
func Methods() []Method {
	return []Method{MethodMiddleSquare, MethodLCG, MethodMersenneTwister, MethodXorShift}
}

// MethodFromString resolves a method by name.
func MethodFromString(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range methodNames {
		if n == name {
			return Method(m), nil
		}
	}
	return 0, errors.WithContext(ErrUnsupportedMethod, fmt.Sprintf("'%s' (use %s)", s, strings.Join(methodNames[:], ", ")))
}

// IsValid returns true iff the method is one of the supported methods.
func (m Method) IsValid() bool {
	return m < numMethods
}

// String returns the canonical name of the method.
func (m Method) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("[unknown method: %d]", uint8(m))
	}
	return methodNames[m]
}

// MarshalText encodes a Method into text form.
func (m Method) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, errors.WithContext(ErrUnsupportedMethod, m.String())
	}
	return []byte(methodNames[m]), nil
}

// UnmarshalText decodes a text slice into a Method.
func (m *Method) UnmarshalText(text []byte) error {
	v, err := MethodFromString(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Set sets the Method to the value specified by the provided string.
func (m *Method) Set(s string) error {
	return m.UnmarshalText([]byte(s))
}

// Type returns the list of supported Methods.
func (m *Method) Type() string {
	return "[" + strings.Join(methodNames[:], ",") + "]"
}

// LCGConfig holds the linear congruential generator parameters.
type LCGConfig struct {
	// Multiplier is the multiplier a.
	Multiplier uint64 `yaml:"a"`
	// Increment is the increment c.
	Increment uint64 `yaml:"c"`
	// Modulus is the modulus m.
	Modulus uint64 `yaml:"m"`
}

// Validate validates the LCG parameters.
func (c *LCGConfig) Validate() error {
	if c.Modulus == 0 {
		return errors.WithContext(ErrInvalidParameter, "lcg modulus must be non-zero")
	}
	return nil
}

// DefaultLCGConfig returns the classic ANSI C parameters.
func DefaultLCGConfig() LCGConfig {
	return LCGConfig{
		Multiplier: 1103515245,
		Increment:  12345,
		Modulus:    1 << 31,
	}
}

// Config selects a generation method and carries its parameters.
type Config struct {
	// Method is the generation method.
	Method Method `yaml:"method"`
	// Seed is the initial state. If nil, the current time is used.
	Seed *uint64 `yaml:"seed,omitempty"`
	// LCG holds the parameters of the linear congruential generator.
	LCG LCGConfig `yaml:"lcg,omitempty"`
}

// WithSeed returns a copy of the configuration with the given seed.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = &seed
	return c
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Method.IsValid() {
		return errors.WithContext(ErrUnsupportedMethod, c.Method.String())
	}
	if c.Method == MethodLCG {
		return c.LCG.Validate()
	}
	return nil
}

// DefaultConfig returns the default configuration for the given method.
func DefaultConfig(m Method) Config {
	return Config{
		Method: m,
		LCG:    DefaultLCGConfig(),
	}
}

// Sequence is an ordered finite sequence of generated values.
type Sequence []uint64

// Float64s converts the sequence to floating point values for testing.
func (s Sequence) Float64s() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
