package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixedSeedIsReproducible(t *testing.T) {
	a, err := New(42)
	require.NoError(t, err)
	b, err := New(42)
	require.NoError(t, err)

	for range 10 {
		assert.Equal(t, a.Intn(52), b.Intn(52))
	}
}

func TestNewSeedVaries(t *testing.T) {
	s1, err := NewSeed()
	require.NoError(t, err)
	s2, err := NewSeed()
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
}

func TestNewZeroSeedUsesCrypto(t *testing.T) {
	rng, err := New(0)
	require.NoError(t, err)
	assert.NotNil(t, rng)
}
