package equation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/state"
)

type fakeOverrider struct{}

func (fakeOverrider) AddEquation(s *state.State, steady bool, eqNumber int) (float64, map[int]float64) {
	return 0, nil
}

func TestRegistryRejectsDoubleClaim(t *testing.T) {
	r := equation.NewRegistry()
	require.NoError(t, r.Claim(0, fakeOverrider{}, 0))
	err := r.Claim(0, fakeOverrider{}, 1)
	assert.ErrorIs(t, err, equation.ErrAlreadyClaimed)
}

func TestRegistryLookupMiss(t *testing.T) {
	r := equation.NewRegistry()
	_, _, ok := r.Lookup(5)
	assert.False(t, ok)
}
