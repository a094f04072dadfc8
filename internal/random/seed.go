// Package random builds the randomness sources used for shuffling and dice.
//
// Production sources are seeded from crypto/rand; a fixed seed makes every
// shuffle reproducible for demos and tests.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a *rand.Rand for seed, or for a fresh crypto seed when seed is zero.
func New(seed int64) (*rand.Rand, error) {
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, err
		}
	}
	return rand.New(rand.NewSource(seed)), nil
}
