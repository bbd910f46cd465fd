package model

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
)

// AddressSize is the byte length of an Address (H160 in spec.md terms).
const AddressSize = 20

// Address identifies an account, derived from the last 20 bytes of the
// SHA-256 digest of an Ed25519 public key.
type Address [AddressSize]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// AddressFromPublicKey derives an Address the way spec.md §3 specifies:
// SHA-256 of the raw public key bytes, keeping the last 20 bytes.
func AddressFromPublicKey(pub ed25519.PublicKey) Address {
	digest := sha256.Sum256(pub)

	var addr Address
	copy(addr[:], digest[len(digest)-AddressSize:])

	return addr
}
