package generator

import (
	"golang.org/x/exp/rand"

	"github.com/simlab/prngkit/generator/api"
)

// host wraps the general-purpose generator provided by the platform,
// seeded once, emitting uniform values in [0, 2^32-1].
type host struct {
	rng *rand.Rand
}

func (g *host) Method() api.Method {
	return api.MethodMersenneTwister
}

func (g *host) Next() uint64 {
	return uint64(g.rng.Uint32())
}

func newHost(seed uint64) Source {
	return &host{
		rng: rand.New(rand.NewSource(seed)),
	}
}
