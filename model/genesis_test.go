package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenesisIsReproducible(t *testing.T) {
	a := Genesis()
	b := Genesis()

	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, GenesisDifficulty, a.Header.Difficulty)
	require.True(t, a.Header.Parent.IsZero())
	require.Empty(t, a.Content)
}
