// Package transport wires an actual libp2p host to the services/p2p worker
// pool: a gossip topic for NewBlockHashes announcements plus direct
// per-peer streams for the request/deliver legs. Adapted from the
// teacher's util/p2p.P2PNode, with peer discovery (DHT, rendezvous
// advertise) dropped — this spec's Non-goals exclude peer discovery and
// NAT traversal; peers are configured statically (config.Settings.StaticPeers).
package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/bitcoin-sv/gophercoin/errors"
	"github.com/bitcoin-sv/gophercoin/services/p2p"
	"github.com/bitcoin-sv/gophercoin/ulogger"
	"github.com/bitcoin-sv/gophercoin/util/retry"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/multiformats/go-multiaddr"
)

const protocolID = "gophercoin/direct/1.0.0"

// Node is a libp2p-backed Network and a peer-stream source for the
// services/p2p worker pool.
type Node struct {
	host   host.Host
	pubsub *pubsub.PubSub
	topic  *pubsub.Topic

	logger      ulogger.Logger
	topicName   string
	staticPeers []string

	mu   sync.Mutex
	pool *p2p.Pool
}

// Config configures a Node. PrivateKeyHex, if empty, generates an ephemeral
// identity key.
type Config struct {
	ListenAddr    string
	PrivateKeyHex string
	GossipTopic   string
	StaticPeers   []string
}

// New creates the libp2p host. Start must be called to join the gossip
// topic and begin dialing static peers.
func New(logger ulogger.Logger, cfg Config) (*Node, error) {
	var identity crypto.PrivKey
	var err error

	if cfg.PrivateKeyHex == "" {
		identity, _, err = crypto.GenerateEd25519Key(rand.Reader)
		if err != nil {
			return nil, errors.NewConfigurationError("transport: error generating identity key", err)
		}
	} else {
		keyBytes, decodeErr := hex.DecodeString(cfg.PrivateKeyHex)
		if decodeErr != nil {
			return nil, errors.NewInvalidArgumentError("transport: invalid private key hex", decodeErr)
		}
		identity, err = crypto.UnmarshalEd25519PrivateKey(keyBytes)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("transport: error unmarshalling private key", err)
		}
	}

	h, err := libp2p.New(
		libp2p.ListenAddrStrings(cfg.ListenAddr),
		libp2p.Identity(identity),
	)
	if err != nil {
		return nil, errors.NewServiceError("transport: error creating libp2p host", err)
	}

	logger.Infof("[transport] peer ID: %s", h.ID().String())
	for _, addr := range h.Addrs() {
		logger.Infof("[transport] listening on: %s/p2p/%s", addr, h.ID().String())
	}

	return &Node{
		host:        h,
		logger:      logger,
		topicName:   cfg.GossipTopic,
		staticPeers: cfg.StaticPeers,
	}, nil
}

// Start joins the gossip topic, registers the direct-stream handler, and
// begins dialing the configured static peers. pool receives every inbound
// message (gossip announcements and direct request/deliver streams).
func (n *Node) Start(ctx context.Context, pool *p2p.Pool) error {
	n.mu.Lock()
	n.pool = pool
	n.mu.Unlock()

	ps, err := pubsub.NewGossipSub(ctx, n.host)
	if err != nil {
		return errors.NewServiceError("transport: error creating gossipsub", err)
	}

	topic, err := ps.Join(n.topicName)
	if err != nil {
		return errors.NewServiceError("transport: error joining topic", err)
	}

	n.pubsub = ps
	n.topic = topic

	sub, err := topic.Subscribe()
	if err != nil {
		return errors.NewServiceError("transport: error subscribing to topic", err)
	}

	go n.readTopic(ctx, sub)

	n.host.SetStreamHandler(protocol.ID(protocolID), n.streamHandler)

	if len(n.staticPeers) > 0 {
		go n.maintainStaticPeers(ctx)
	} else {
		n.logger.Infof("[transport] no static peers configured")
	}

	return nil
}

func (n *Node) readTopic(ctx context.Context, sub *pubsub.Subscription) {
	for {
		m, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			n.logger.Errorf("[transport] error reading from topic: %v", err)
			continue
		}

		if m.ReceivedFrom == n.host.ID() {
			continue
		}

		msg, err := p2p.Decode(m.Data)
		if err != nil {
			n.logger.Warnf("[transport] dropping malformed gossip message from %s: %v", m.ReceivedFrom, err)
			continue
		}

		n.submit(msg, m.ReceivedFrom)
	}
}

func (n *Node) streamHandler(s network.Stream) {
	defer s.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(s); err != nil {
		n.logger.Warnf("[transport] error reading stream from %s: %v", s.Conn().RemotePeer(), err)
		return
	}

	msg, err := p2p.Decode(buf.Bytes())
	if err != nil {
		n.logger.Warnf("[transport] dropping malformed direct message from %s: %v", s.Conn().RemotePeer(), err)
		return
	}

	n.submit(msg, s.Conn().RemotePeer())
}

func (n *Node) submit(msg p2p.Message, from peer.ID) {
	n.mu.Lock()
	pool := n.pool
	n.mu.Unlock()

	if pool == nil {
		return
	}

	pool.Submit(p2p.InboundMessage{Msg: msg, From: &directPeer{node: n, id: from}})
}

// Broadcast publishes msg to the gossip topic, reaching every subscribed
// peer (spec.md §6: broadcast enqueues for delivery to every connected
// peer).
func (n *Node) Broadcast(msg p2p.Message) {
	n.mu.Lock()
	topic := n.topic
	n.mu.Unlock()

	if topic == nil {
		return
	}

	if err := topic.Publish(context.Background(), msg.Encode()); err != nil {
		n.logger.Warnf("[transport] error publishing to topic: %v", err)
	}
}

// directPeer implements p2p.Peer over a direct libp2p stream to one peer —
// the per-peer write handle delivered alongside each inbound message.
type directPeer struct {
	node *Node
	id   peer.ID
}

func (d *directPeer) Write(msg p2p.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := d.node.host.NewStream(ctx, d.id, protocol.ID(protocolID))
	if err != nil {
		return errors.NewServiceUnavailableError("transport: error opening stream to peer", err)
	}
	defer s.Close()

	if _, err := s.Write(msg.Encode()); err != nil {
		return errors.NewServiceError("transport: error writing to peer", err)
	}

	return nil
}

func (n *Node) maintainStaticPeers(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		allConnected := true
		for _, addrStr := range n.staticPeers {
			info, err := peer.AddrInfoFromP2pAddr(multiaddr.StringCast(addrStr))
			if err != nil {
				n.logger.Errorf("[transport] invalid static peer address %s: %v", addrStr, err)
				continue
			}

			if n.host.Network().Connectedness(info.ID) == network.Connected {
				continue
			}

			err = retry.Do(ctx, n.logger, func() error {
				return n.host.Connect(ctx, *info)
			}, retry.WithMessage(fmt.Sprintf("[transport] connecting to static peer %s", addrStr)), retry.WithRetryCount(2))

			if err != nil {
				allConnected = false
				n.logger.Debugf("[transport] failed to connect to static peer %s: %v", addrStr, err)
			} else {
				n.logger.Infof("[transport] connected to static peer: %s", addrStr)
			}
		}

		wait := 5 * time.Second
		if allConnected {
			wait = 30 * time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// HostID returns this node's libp2p peer ID.
func (n *Node) HostID() peer.ID {
	return n.host.ID()
}
