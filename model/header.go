package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
)

// BlockHeader is the proof-of-work envelope around a block's content.
// Field order here is also the canonical serialization order used by
// Hash(), so it must never be reordered without every existing hash
// becoming stale.
type BlockHeader struct {
	Parent     Hash
	Nonce      uint64
	Difficulty Hash
	Timestamp  uint64 // milliseconds since epoch
	MerkleRoot Hash
}

// Bytes returns the canonical serialization of the header, the input to
// Hash() and the thing a miner's nonce search varies.
func (h *BlockHeader) Bytes() []byte {
	var buf bytes.Buffer

	buf.Write(h.Parent[:])

	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], h.Nonce)
	buf.Write(nonceBuf[:])

	buf.Write(h.Difficulty[:])

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], h.Timestamp)
	buf.Write(tsBuf[:])

	buf.Write(h.MerkleRoot[:])

	return buf.Bytes()
}

// Hash is SHA-256 of the canonical serialization.
func (h *BlockHeader) Hash() Hash {
	return sha256.Sum256(h.Bytes())
}
