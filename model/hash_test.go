package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashCmpAndLessOrEqual(t *testing.T) {
	low := Hash{0x00, 0x01}
	high := Hash{0x00, 0x02}

	require.Equal(t, -1, low.Cmp(high))
	require.Equal(t, 1, high.Cmp(low))
	require.Equal(t, 0, low.Cmp(low))

	require.True(t, low.LessOrEqual(high))
	require.True(t, low.LessOrEqual(low))
	require.False(t, high.LessOrEqual(low))
}

func TestHashFromHexRoundTrip(t *testing.T) {
	h := RandomHash()

	parsed, err := HashFromHex(h.String())
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}

func TestHashFromHexRejectsBadInput(t *testing.T) {
	_, err := HashFromHex("not-hex")
	require.Error(t, err)

	_, err = HashFromHex("aabb")
	require.Error(t, err)
}

func TestDifficultyFromLeadingZeroBits(t *testing.T) {
	d := DifficultyFromLeadingZeroBits(16)
	require.Equal(t, byte(0x00), d[0])
	require.Equal(t, byte(0x00), d[1])
	require.Equal(t, byte(0xff), d[2])

	d = DifficultyFromLeadingZeroBits(12)
	require.Equal(t, byte(0x00), d[0])
	require.Equal(t, byte(0x0f), d[1])
}
