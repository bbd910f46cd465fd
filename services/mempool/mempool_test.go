package mempool

import (
	"testing"

	"github.com/bitcoin-sv/gophercoin/model"
	"github.com/stretchr/testify/require"
)

func TestPopOnEmptyReturnsFalse(t *testing.T) {
	p := New()

	_, ok := p.Pop()
	require.False(t, ok)
}

func TestInsertThenPopFIFO(t *testing.T) {
	p := New()

	tx1 := model.SignedTransaction{Raw: model.RawTransaction{Nonce: 1}}
	tx2 := model.SignedTransaction{Raw: model.RawTransaction{Nonce: 2}}

	p.Insert(tx1)
	p.Insert(tx2)
	require.Equal(t, 2, p.Len())

	got1, ok := p.Pop()
	require.True(t, ok)
	require.Equal(t, tx1, got1)

	got2, ok := p.Pop()
	require.True(t, ok)
	require.Equal(t, tx2, got2)

	_, ok = p.Pop()
	require.False(t, ok)
}
