package model

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
)

// RawTransaction is the unsigned, account-based transfer spec.md §3
// describes: move Value units from From to To at the sender's Nonce.
type RawTransaction struct {
	From  Address
	To    Address
	Value uint64
	Nonce uint32
}

// Bytes is the canonical serialization signed over and hashed.
func (t RawTransaction) Bytes() []byte {
	var buf bytes.Buffer

	buf.Write(t.From[:])
	buf.Write(t.To[:])

	var valueBuf [8]byte
	binary.BigEndian.PutUint64(valueBuf[:], t.Value)
	buf.Write(valueBuf[:])

	var nonceBuf [4]byte
	binary.BigEndian.PutUint32(nonceBuf[:], t.Nonce)
	buf.Write(nonceBuf[:])

	return buf.Bytes()
}

func (t RawTransaction) Hash() Hash {
	return sha256.Sum256(t.Bytes())
}

// SignedTransaction pairs a RawTransaction with the signer's public key and
// an Ed25519 signature over the raw transaction's canonical bytes.
type SignedTransaction struct {
	Raw       RawTransaction
	PubKey    []byte
	Signature []byte
}

func (t SignedTransaction) Bytes() []byte {
	var buf bytes.Buffer

	buf.Write(t.Raw.Bytes())
	buf.Write(t.PubKey)
	buf.Write(t.Signature)

	return buf.Bytes()
}

func (t SignedTransaction) Hash() Hash {
	return sha256.Sum256(t.Bytes())
}

// SignTransaction signs raw with key, returning a SignedTransaction.
// Supplemented from original_source/src/transaction.rs's SignedTransaction::from_raw —
// not invoked by any core operation (spec.md Non-goals exclude transaction
// execution) but part of the transaction type's complete behavior.
func SignTransaction(raw RawTransaction, key ed25519.PrivateKey) SignedTransaction {
	sig := ed25519.Sign(key, raw.Bytes())

	return SignedTransaction{
		Raw:       raw,
		PubKey:    append([]byte(nil), key.Public().(ed25519.PublicKey)...),
		Signature: sig,
	}
}

// VerifySignature checks the Ed25519 signature against the raw payload.
func (t SignedTransaction) VerifySignature() bool {
	if len(t.PubKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(t.PubKey, t.Raw.Bytes(), t.Signature)
}
