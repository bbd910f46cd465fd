package model

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
)

// Account is the per-address ledger entry: balance plus the next expected
// transaction nonce.
type Account struct {
	Nonce   uint32
	Balance uint64
}

// State is the account table. Defined per spec.md §6 as an auxiliary
// surface; no core operation (block-tree, miner, network worker) reads or
// writes it — spec.md Non-goals explicitly exclude transaction execution
// and balance validation.
type State struct {
	accounts map[Address]Account
}

func (s *State) Get(addr Address) (Account, bool) {
	a, ok := s.accounts[addr]
	return a, ok
}

func (s *State) Update(addr Address, account Account) {
	s.accounts[addr] = account
}

// icoAccountCount is the number of deterministic keypairs the initial coin
// offering derives (spec.md §6: i in [0, 10)).
const icoAccountCount = 10

// DeterministicICOKeyPair reproduces the i-th ICO keypair. Seeded from a
// fixed label plus index so every node derives the identical keys, the Go
// equivalent of original_source/src/address.rs's
// get_deterministic_keypair(i) (not present in the retrieved pack, so the
// derivation scheme itself — SHA-256(label || i) as an Ed25519 seed — is
// this port's own, grounded on the same "deterministic by index" contract).
func DeterministicICOKeyPair(i int) ed25519.PrivateKey {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(i))

	h := sha256.New()
	h.Write([]byte("gophercoin-ico-seed"))
	h.Write(idx[:])
	seed := h.Sum(nil)

	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
}

// ICO builds the initial coin offering state: account i is credited
// 1000*(10-i) units at nonce 0, for i in [0, 10) (spec.md §6).
func ICO() *State {
	s := &State{accounts: make(map[Address]Account, icoAccountCount)}

	for i := 0; i < icoAccountCount; i++ {
		key := DeterministicICOKeyPair(i)
		addr := AddressFromPublicKey(key.Public().(ed25519.PublicKey))
		balance := uint64(1000 * (icoAccountCount - i))

		s.Update(addr, Account{Nonce: 0, Balance: balance})
	}

	return s
}
