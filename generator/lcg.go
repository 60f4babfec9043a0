package generator

import (
	"math/bits"

	"github.com/simlab/prngkit/generator/api"
)

type lcg struct {
	state uint64
	cfg   api.LCGConfig
}

func (g *lcg) Method() api.Method {
	return api.MethodLCG
}

// Next computes x = (a*x + c) mod m with a 128-bit intermediate so that
// arbitrary 64-bit parameters never overflow.
func (g *lcg) Next() uint64 {
	hi, lo := bits.Mul64(g.cfg.Multiplier, g.state)
	var carry uint64
	lo, carry = bits.Add64(lo, g.cfg.Increment, 0)
	hi += carry

	m := g.cfg.Modulus
	_, g.state = bits.Div64(hi%m, lo, m)
	return g.state
}

func newLCG(seed uint64, cfg api.LCGConfig) Source {
	return &lcg{
		state: seed,
		cfg:   cfg,
	}
}
