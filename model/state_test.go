package model

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestICOBalancesFollowDescendingFormula(t *testing.T) {
	s := ICO()

	for i := 0; i < icoAccountCount; i++ {
		key := DeterministicICOKeyPair(i)
		addr := AddressFromPublicKey(key.Public().(ed25519.PublicKey))

		account, ok := s.Get(addr)
		require.True(t, ok)
		require.Equal(t, uint32(0), account.Nonce)
		require.Equal(t, uint64(1000*(icoAccountCount-i)), account.Balance)
	}
}

func TestDeterministicICOKeyPairIsStable(t *testing.T) {
	require.Equal(t, DeterministicICOKeyPair(3), DeterministicICOKeyPair(3))
	require.NotEqual(t, DeterministicICOKeyPair(3), DeterministicICOKeyPair(4))
}

func TestStateUpdateOverwritesAccount(t *testing.T) {
	s := &State{accounts: make(map[Address]Account)}
	addr := Address{0x09}

	s.Update(addr, Account{Nonce: 0, Balance: 100})
	s.Update(addr, Account{Nonce: 1, Balance: 50})

	account, ok := s.Get(addr)
	require.True(t, ok)
	require.Equal(t, uint32(1), account.Nonce)
	require.Equal(t, uint64(50), account.Balance)
}

func TestStateGetMissingAccount(t *testing.T) {
	s := &State{accounts: make(map[Address]Account)}
	_, ok := s.Get(Address{0xff})
	require.False(t, ok)
}
