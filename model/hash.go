package model

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"

	"github.com/bitcoin-sv/gophercoin/errors"
)

// HashSize is the byte length of a Hash (H256 in spec.md terms).
const HashSize = 32

// Hash is a 32-byte content address and, doubling as a PoW target, a
// 256-bit unsigned integer compared big-endian.
type Hash [HashSize]byte

// Hashable is implemented by anything whose identity is a Hash of its
// canonical serialization — headers, blocks, transactions.
type Hashable interface {
	Hash() Hash
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash (used for genesis' parent).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Cmp compares h to other as big-endian 256-bit integers: -1, 0, or 1.
func (h Hash) Cmp(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// LessOrEqual is the PoW satisfaction predicate: h meets a target iff
// h <= target, both read as big-endian integers.
func (h Hash) LessOrEqual(target Hash) bool {
	return h.Cmp(target) <= 0
}

// HashFromHex decodes a 64-character hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash

	b, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.NewInvalidArgumentError("invalid hash hex %q", s, err)
	}

	if len(b) != HashSize {
		return h, errors.NewInvalidArgumentError("hash must be %d bytes, got %d", HashSize, len(b))
	}

	copy(h[:], b)

	return h, nil
}

// RandomHash returns a cryptographically random Hash. Only the hash tests
// call it; the miner's filler transaction is the zero value.
func RandomHash() Hash {
	var h Hash
	_, _ = rand.Read(h[:])
	return h
}

// DifficultyFromLeadingZeroBits returns a target hash whose top n bits are
// zero and the rest are one — a convenience for constructing a difficulty
// that accepts roughly 1/2^n of random hashes, used by Genesis and tests.
func DifficultyFromLeadingZeroBits(n int) Hash {
	var h Hash
	for i := range h {
		h[i] = 0xff
	}

	fullBytes := n / 8
	remBits := n % 8

	for i := 0; i < fullBytes && i < HashSize; i++ {
		h[i] = 0x00
	}

	if fullBytes < HashSize && remBits > 0 {
		h[fullBytes] = 0xff >> remBits
	}

	return h
}
