// Package generator implements the pseudo-random number generators.
package generator

import (
	"fmt"
	"time"

	"github.com/simlab/prngkit/common/errors"
	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/generator/api"
)

var logger = logging.GetLogger(api.ModuleName)

// Source is a generator with private state.
type Source interface {
	// Method returns the generation method.
	Method() api.Method

	// Next advances the state and returns the next value.
	Next() uint64
}

// New resolves the configured method and returns a freshly seeded source.
func New(cfg *api.Config) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var seed uint64
	switch cfg.Seed {
	case nil:
		seed = uint64(time.Now().Unix())
	default:
		seed = *cfg.Seed
	}

	logger.Debug("initializing source",
		"method", cfg.Method,
		"seed", seed,
		"seed_from_clock", cfg.Seed == nil,
	)

	switch cfg.Method {
	case api.MethodMiddleSquare:
		return newMiddleSquare(seed), nil
	case api.MethodLCG:
		return newLCG(seed, cfg.LCG), nil
	case api.MethodMersenneTwister:
		return newHost(seed), nil
	case api.MethodXorShift:
		return newXorShift(seed), nil
	default:
		// Unreachable, Validate rejects unknown methods.
		return nil, errors.WithContext(api.ErrUnsupportedMethod, cfg.Method.String())
	}
}

// Generate produces n values with the configured method.
func Generate(n int, cfg *api.Config) (api.Sequence, error) {
	if n <= 0 {
		return nil, errors.WithContext(api.ErrInvalidCount, fmt.Sprintf("%d", n))
	}

	src, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return Fill(src, n), nil
}

// Fill draws n values from the source.
func Fill(src Source, n int) api.Sequence {
	seq := make(api.Sequence, n)
	for i := range seq {
		seq[i] = src.Next()
	}

	logger.Debug("generated sequence",
		"method", src.Method(),
		"count", n,
	)

	return seq
}
