package generator

import (
	"math"
	"math/big"
	"strconv"

	"github.com/simlab/prngkit/generator/api"
)

const (
	middleSquareWidth = 8
	middleSquareLo    = 2
	middleSquareHi    = 6
)

type middleSquare struct {
	state uint64
}

func (g *middleSquare) Method() api.Method {
	return api.MethodMiddleSquare
}

func (g *middleSquare) Next() uint64 {
	g.state = middleSquareStep(g.state)
	return g.state
}

// middleSquareStep squares s, left pads the decimal representation with
// zeroes to 8 digits and returns the digits at positions 2 through 5.
//
// Squares wider than 8 digits (only possible for seeds above 9999) still
// yield positions 2 through 5 of the unpadded string.
func middleSquareStep(s uint64) uint64 {
	var digits string
	switch {
	case s <= math.MaxUint32:
		digits = strconv.FormatUint(s*s, 10)
	default:
		b := new(big.Int).SetUint64(s)
		digits = b.Mul(b, b).String()
	}

	if pad := middleSquareWidth - len(digits); pad > 0 {
		digits = zeroes[:pad] + digits
	}

	// The slice is at most 4 decimal digits so this never fails.
	v, _ := strconv.ParseUint(digits[middleSquareLo:middleSquareHi], 10, 64)
	return v
}

const zeroes = "00000000"

func newMiddleSquare(seed uint64) Source {
	return &middleSquare{state: seed}
}
