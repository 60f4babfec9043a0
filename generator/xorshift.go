package generator

import "github.com/simlab/prngkit/generator/api"

type xorShift struct {
	state uint32
}

func (g *xorShift) Method() api.Method {
	return api.MethodXorShift
}

func (g *xorShift) Next() uint64 {
	x := g.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	g.state = x
	return uint64(x)
}

// newXorShift masks the seed to the 32-bit state. A zero seed is a fixed
// point of the recurrence.
func newXorShift(seed uint64) Source {
	return &xorShift{state: uint32(seed)}
}
