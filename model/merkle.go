package model

import "crypto/sha256"

// MerkleTree is a binary hash tree over a block's transactions, grounded on
// the teacher's subtree-root convention (util.Subtree) but flattened to the
// spec's single ordered transaction list rather than teranode's subtree
// batching.
type MerkleTree struct {
	root Hash
}

// NewMerkleTree builds the tree over txs in order. txs must be non-empty —
// the miner is responsible for substituting a filler transaction when the
// mempool is empty (spec.md §4.2 step 2).
func NewMerkleTree(txs []SignedTransaction) *MerkleTree {
	leaves := make([]Hash, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.Hash()
	}

	return &MerkleTree{root: merkleRoot(leaves)}
}

func (m *MerkleTree) Root() Hash {
	return m.root
}

func merkleRoot(level []Hash) Hash {
	if len(level) == 0 {
		return Hash{}
	}

	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)

		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}

			var buf [2 * HashSize]byte
			copy(buf[:HashSize], left[:])
			copy(buf[HashSize:], right[:])

			next = append(next, sha256.Sum256(buf[:]))
		}

		level = next
	}

	return level[0]
}
