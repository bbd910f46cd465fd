package model

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyTransaction(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	raw := RawTransaction{
		From:  AddressFromPublicKey(pub),
		To:    Address{0x01},
		Value: 42,
		Nonce: 0,
	}

	signed := SignTransaction(raw, priv)
	require.True(t, signed.VerifySignature())
}

func TestVerifySignatureRejectsTamperedValue(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	raw := RawTransaction{Value: 10, Nonce: 1}
	signed := SignTransaction(raw, priv)

	signed.Raw.Value = 999
	require.False(t, signed.VerifySignature())
}

func TestVerifySignatureRejectsMalformedPubKey(t *testing.T) {
	signed := SignedTransaction{PubKey: []byte{0x01, 0x02}}
	require.False(t, signed.VerifySignature())
}

func TestRawTransactionHashIsDeterministic(t *testing.T) {
	raw := RawTransaction{From: Address{1}, To: Address{2}, Value: 5, Nonce: 3}
	require.Equal(t, raw.Hash(), raw.Hash())
}
