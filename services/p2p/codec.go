package p2p

import (
	"encoding/binary"

	"github.com/bitcoin-sv/gophercoin/errors"
	"github.com/bitcoin-sv/gophercoin/model"
)

// encodeBlock/decodeBlock are the wire companion to model.BlockHeader.Bytes:
// that method serializes the header for hashing but has no matching parser,
// since nothing inside the core ever needs to deserialize a header. The
// network does, so the pairing lives here rather than in package model.

const headerWireSize = model.HashSize + 8 + model.HashSize + 8 + model.HashSize

func encodeBlock(b *model.Block) []byte {
	buf := make([]byte, 0, headerWireSize+4)

	buf = append(buf, b.Header.Parent[:]...)
	buf = appendUint64(buf, b.Header.Nonce)
	buf = append(buf, b.Header.Difficulty[:]...)
	buf = appendUint64(buf, b.Header.Timestamp)
	buf = append(buf, b.Header.MerkleRoot[:]...)

	buf = appendUint32(buf, uint32(len(b.Content)))
	for _, tx := range b.Content {
		buf = appendUint32(buf, uint32(len(encodeTx(tx))))
		buf = append(buf, encodeTx(tx)...)
	}

	return buf
}

func decodeBlock(data []byte) (*model.Block, error) {
	if len(data) < headerWireSize+4 {
		return nil, errors.NewInvalidArgumentError("p2p: truncated block header")
	}

	header := &model.BlockHeader{}
	copy(header.Parent[:], data[:model.HashSize])
	data = data[model.HashSize:]

	header.Nonce = binary.BigEndian.Uint64(data)
	data = data[8:]

	copy(header.Difficulty[:], data[:model.HashSize])
	data = data[model.HashSize:]

	header.Timestamp = binary.BigEndian.Uint64(data)
	data = data[8:]

	copy(header.MerkleRoot[:], data[:model.HashSize])
	data = data[model.HashSize:]

	count, data, err := readUint32Prefixed(data)
	if err != nil {
		return nil, err
	}

	content := make([]model.SignedTransaction, 0, count)
	for i := uint32(0); i < count; i++ {
		txLen, tail, err := readUint32Prefixed(data)
		if err != nil {
			return nil, err
		}
		if len(tail) < int(txLen) {
			return nil, errors.NewInvalidArgumentError("p2p: truncated transaction")
		}
		tx, err := decodeTx(tail[:txLen])
		if err != nil {
			return nil, err
		}
		content = append(content, tx)
		data = tail[txLen:]
	}

	return model.NewBlock(header, content), nil
}

func encodeTx(tx model.SignedTransaction) []byte {
	buf := make([]byte, 0, len(tx.Raw.Bytes())+len(tx.PubKey)+len(tx.Signature)+8)

	buf = append(buf, tx.Raw.Bytes()...)
	buf = appendUint32(buf, uint32(len(tx.PubKey)))
	buf = append(buf, tx.PubKey...)
	buf = appendUint32(buf, uint32(len(tx.Signature)))
	buf = append(buf, tx.Signature...)

	return buf
}

const rawTxWireSize = model.AddressSize + model.AddressSize + 8 + 4

func decodeTx(data []byte) (model.SignedTransaction, error) {
	if len(data) < rawTxWireSize {
		return model.SignedTransaction{}, errors.NewInvalidArgumentError("p2p: truncated raw transaction")
	}

	var raw model.RawTransaction
	copy(raw.From[:], data[:model.AddressSize])
	data = data[model.AddressSize:]
	copy(raw.To[:], data[:model.AddressSize])
	data = data[model.AddressSize:]
	raw.Value = binary.BigEndian.Uint64(data)
	data = data[8:]
	raw.Nonce = binary.BigEndian.Uint32(data)
	data = data[4:]

	pubKeyLen, data, err := readUint32Prefixed(data)
	if err != nil {
		return model.SignedTransaction{}, err
	}
	if len(data) < int(pubKeyLen) {
		return model.SignedTransaction{}, errors.NewInvalidArgumentError("p2p: truncated public key")
	}
	pubKey := append([]byte(nil), data[:pubKeyLen]...)
	data = data[pubKeyLen:]

	sigLen, data, err := readUint32Prefixed(data)
	if err != nil {
		return model.SignedTransaction{}, err
	}
	if len(data) < int(sigLen) {
		return model.SignedTransaction{}, errors.NewInvalidArgumentError("p2p: truncated signature")
	}
	signature := append([]byte(nil), data[:sigLen]...)

	return model.SignedTransaction{Raw: raw, PubKey: pubKey, Signature: signature}, nil
}
