// Package p2p implements the three-phase (announce/request/deliver) gossip
// protocol over a fixed-size pool of network workers (spec.md §4.3). The
// wire codec and handler contracts live here; services/p2p/transport wires
// an actual libp2p host to it.
package p2p

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/bitcoin-sv/gophercoin/errors"
	"github.com/bitcoin-sv/gophercoin/model"
)

// Kind tags the five messages spec.md §4.3 defines.
type Kind byte

const (
	KindPing Kind = iota + 1
	KindPong
	KindNewBlockHashes
	KindGetBlocks
	KindBlocks
)

// Message is the tagged union wire-transmitted between peers. Only the
// field(s) relevant to Kind are populated; this mirrors the teacher's
// message envelopes (one struct, Kind-gated fields) rather than introducing
// a Go interface per variant, since the wire form needs one canonical
// encode/decode pair regardless.
type Message struct {
	Kind      Kind
	PingNonce uint64  // Ping
	PongNonce string  // Pong: decimal string of the ping's nonce
	Hashes    []model.Hash // NewBlockHashes, GetBlocks
	Blocks    []*model.Block // Blocks
}

// NewPing builds a Ping(n) message.
func NewPing(nonce uint64) Message { return Message{Kind: KindPing, PingNonce: nonce} }

// NewPong builds a Pong(s) message replying to a ping's nonce.
func NewPong(nonce uint64) Message {
	return Message{Kind: KindPong, PongNonce: strconv.FormatUint(nonce, 10)}
}

// NewNewBlockHashes builds a NewBlockHashes(H) announcement.
func NewNewBlockHashes(hashes []model.Hash) Message {
	return Message{Kind: KindNewBlockHashes, Hashes: hashes}
}

// NewGetBlocks builds a GetBlocks(H) request.
func NewGetBlocks(hashes []model.Hash) Message {
	return Message{Kind: KindGetBlocks, Hashes: hashes}
}

// NewBlocks builds a Blocks(B) delivery.
func NewBlocks(blocks []*model.Block) Message {
	return Message{Kind: KindBlocks, Blocks: blocks}
}

// Encode serializes m into its canonical binary wire form.
func (m Message) Encode() []byte {
	buf := []byte{byte(m.Kind)}

	switch m.Kind {
	case KindPing:
		buf = appendUint64(buf, m.PingNonce)
	case KindPong:
		buf = appendUint32(buf, uint32(len(m.PongNonce)))
		buf = append(buf, m.PongNonce...)
	case KindNewBlockHashes, KindGetBlocks:
		buf = appendUint32(buf, uint32(len(m.Hashes)))
		for _, h := range m.Hashes {
			buf = append(buf, h[:]...)
		}
	case KindBlocks:
		buf = appendUint32(buf, uint32(len(m.Blocks)))
		for _, b := range m.Blocks {
			encoded := encodeBlock(b)
			buf = appendUint32(buf, uint32(len(encoded)))
			buf = append(buf, encoded...)
		}
	}

	return buf
}

// Decode parses the canonical binary wire form produced by Encode.
func Decode(data []byte) (Message, error) {
	if len(data) < 1 {
		return Message{}, errors.NewInvalidArgumentError("p2p: empty message")
	}

	kind := Kind(data[0])
	rest := data[1:]

	switch kind {
	case KindPing:
		if len(rest) < 8 {
			return Message{}, errors.NewInvalidArgumentError("p2p: truncated ping")
		}
		return Message{Kind: kind, PingNonce: binary.BigEndian.Uint64(rest)}, nil

	case KindPong:
		n, body, err := readUint32Prefixed(rest)
		if err != nil {
			return Message{}, err
		}
		if len(body) < int(n) {
			return Message{}, errors.NewInvalidArgumentError("p2p: truncated pong")
		}
		return Message{Kind: kind, PongNonce: string(body[:n])}, nil

	case KindNewBlockHashes, KindGetBlocks:
		count, body, err := readUint32Prefixed(rest)
		if err != nil {
			return Message{}, err
		}
		hashes := make([]model.Hash, 0, count)
		for i := uint32(0); i < count; i++ {
			if len(body) < model.HashSize {
				return Message{}, errors.NewInvalidArgumentError("p2p: truncated hash list")
			}
			var h model.Hash
			copy(h[:], body[:model.HashSize])
			hashes = append(hashes, h)
			body = body[model.HashSize:]
		}
		return Message{Kind: kind, Hashes: hashes}, nil

	case KindBlocks:
		count, body, err := readUint32Prefixed(rest)
		if err != nil {
			return Message{}, err
		}
		blocks := make([]*model.Block, 0, count)
		for i := uint32(0); i < count; i++ {
			blockLen, tail, err := readUint32Prefixed(body)
			if err != nil {
				return Message{}, err
			}
			if len(tail) < int(blockLen) {
				return Message{}, errors.NewInvalidArgumentError("p2p: truncated block")
			}
			b, err := decodeBlock(tail[:blockLen])
			if err != nil {
				return Message{}, err
			}
			blocks = append(blocks, b)
			body = tail[blockLen:]
		}
		return Message{Kind: kind, Blocks: blocks}, nil
	}

	return Message{}, errors.NewInvalidArgumentError(fmt.Sprintf("p2p: unknown message kind %d", kind))
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readUint32Prefixed(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, errors.NewInvalidArgumentError("p2p: truncated length prefix")
	}
	return binary.BigEndian.Uint32(data), data[4:], nil
}
