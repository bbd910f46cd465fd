package p2p

import (
	"context"
	"time"

	"github.com/bitcoin-sv/gophercoin/stores/blockchain"
	"github.com/bitcoin-sv/gophercoin/ulogger"
)

// Peer is the per-peer write handle delivered alongside each inbound
// message (spec.md §6: network-server collaborator). Writing replies to the
// sender only.
type Peer interface {
	Write(msg Message) error
}

// Broadcaster enqueues a message for delivery to every connected peer.
type Broadcaster interface {
	Broadcast(msg Message)
}

// Network is the full network-server collaborator surface a worker pool
// needs: broadcast to everyone, or (via the Peer on each InboundMessage)
// reply to one.
type Network interface {
	Broadcaster
}

// InboundMessage pairs a decoded Message with the peer it arrived from.
type InboundMessage struct {
	Msg  Message
	From Peer
}

// Pool is the fixed-size network-worker pool (spec.md §4.3): num goroutines
// draining a shared inbound channel, each driving the gossip protocol's
// handler contracts against the shared block-tree store.
type Pool struct {
	store   blockchain.Store
	network Network
	logger  ulogger.Logger
	inbound chan InboundMessage
	num     int
}

// NewPool builds a worker pool of the given fixed size.
func NewPool(num int, store blockchain.Store, network Network, logger ulogger.Logger) *Pool {
	initPrometheusMetrics()

	return &Pool{
		store:   store,
		network: network,
		logger:  logger,
		inbound: make(chan InboundMessage, 256),
		num:     num,
	}
}

// Submit enqueues an inbound message for processing by the pool. Blocks if
// the inbound buffer is full.
func (p *Pool) Submit(msg InboundMessage) {
	p.inbound <- msg
}

// Run starts the fixed-size worker pool. Workers terminate when ctx is
// done or the inbound channel is closed, per spec.md §5's "no graceful
// shutdown path in the core contract" contract.
func (p *Pool) Run(ctx context.Context) {
	for i := 0; i < p.num; i++ {
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-p.inbound:
			if !ok {
				return
			}
			p.handle(in)
		}
	}
}

func (p *Pool) handle(in InboundMessage) {
	prometheusMessagesReceived.WithLabelValues(kindLabel(in.Msg.Kind)).Inc()

	switch in.Msg.Kind {
	case KindPing:
		p.handlePing(in)
	case KindPong:
		p.handlePong(in)
	case KindNewBlockHashes:
		p.handleNewBlockHashes(in)
	case KindGetBlocks:
		p.handleGetBlocks(in)
	case KindBlocks:
		p.handleBlocks(in)
	default:
		p.logger.Warnf("[p2p] dropping message with unknown kind %d", in.Msg.Kind)
	}
}

func (p *Pool) handlePing(in InboundMessage) {
	if err := in.From.Write(NewPong(in.Msg.PingNonce)); err != nil {
		p.logger.Warnf("[p2p] error replying to ping: %v", err)
	}
}

func (p *Pool) handlePong(in InboundMessage) {
	p.logger.Debugf("[p2p] pong: %s", in.Msg.PongNonce)
}

func (p *Pool) handleNewBlockHashes(in InboundMessage) {
	unknown := p.store.FilterUnknown(in.Msg.Hashes)
	if len(unknown) == 0 {
		return
	}

	if err := in.From.Write(NewGetBlocks(unknown)); err != nil {
		p.logger.Warnf("[p2p] error requesting blocks: %v", err)
	}
}

func (p *Pool) handleGetBlocks(in InboundMessage) {
	known := p.store.CollectKnown(in.Msg.Hashes)
	if len(known) == 0 {
		return
	}

	if err := in.From.Write(NewBlocks(known)); err != nil {
		p.logger.Warnf("[p2p] error delivering blocks: %v", err)
	}
}

func (p *Pool) handleBlocks(in InboundMessage) {
	nowMs := time.Now().UnixMilli()

	missing, relayed, powRejected := p.store.ProcessBlocks(in.Msg.Blocks, nowMs)

	for _, hash := range powRejected {
		p.logger.Warnf("[p2p] dropping PoW-invalid block %s", hash)
	}

	if len(missing) > 0 {
		if err := in.From.Write(NewGetBlocks(missing)); err != nil {
			p.logger.Warnf("[p2p] error requesting missing ancestors: %v", err)
		}
	}

	if len(relayed) > 0 {
		p.network.Broadcast(NewNewBlockHashes(relayed))
	}
}

func kindLabel(k Kind) string {
	switch k {
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindNewBlockHashes:
		return "new_block_hashes"
	case KindGetBlocks:
		return "get_blocks"
	case KindBlocks:
		return "blocks"
	default:
		return "unknown"
	}
}
