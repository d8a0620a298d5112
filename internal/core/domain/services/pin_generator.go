package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"ecolocker/internal/core/domain/model/order"
)

// PinGenerator issues uniformly distributed six digit PINs.
type PinGenerator interface {
	Generate() (order.Pin, error)
}

var pinSpace = big.NewInt(1_000_000)

type randomPinGenerator struct {
	source io.Reader
}

// NewPinGenerator returns a generator backed by crypto/rand.
func NewPinGenerator() PinGenerator {
	return &randomPinGenerator{source: rand.Reader}
}

// NewPinGeneratorFromReader is used by tests to make PINs reproducible.
func NewPinGeneratorFromReader(source io.Reader) PinGenerator {
	return &randomPinGenerator{source: source}
}

func (g *randomPinGenerator) Generate() (order.Pin, error) {
	n, err := rand.Int(g.source, pinSpace)
	if err != nil {
		return order.Pin{}, fmt.Errorf("generate pickup pin: %w", err)
	}
	return order.NewPin(fmt.Sprintf("%0*d", order.PinLength, n.Int64()))
}
