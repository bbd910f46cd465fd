package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func txWithNonce(n uint32) SignedTransaction {
	return SignedTransaction{Raw: RawTransaction{Nonce: n}}
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	tx := txWithNonce(1)
	tree := NewMerkleTree([]SignedTransaction{tx})
	require.Equal(t, tx.Hash(), tree.Root())
}

func TestMerkleRootDeterministicAndOrderSensitive(t *testing.T) {
	txs := []SignedTransaction{txWithNonce(1), txWithNonce(2), txWithNonce(3)}

	r1 := NewMerkleTree(txs).Root()
	r2 := NewMerkleTree(txs).Root()
	require.Equal(t, r1, r2)

	reordered := []SignedTransaction{txs[1], txs[0], txs[2]}
	require.NotEqual(t, r1, NewMerkleTree(reordered).Root())
}

func TestMerkleRootOddCountDuplicatesLast(t *testing.T) {
	txs := []SignedTransaction{txWithNonce(1), txWithNonce(2), txWithNonce(3)}
	padded := []SignedTransaction{txs[0], txs[1], txs[2], txs[2]}

	require.Equal(t, NewMerkleTree(padded).Root(), NewMerkleTree(txs).Root())
}
