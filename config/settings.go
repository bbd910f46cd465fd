// Package config centralizes the gocore.Config() lookups the node needs at
// startup, the way the teacher spreads gocore.Config().GetX calls through
// each service's New/Start but collected here since this node has no
// per-service config sprawl to mirror.
package config

import (
	"strings"

	"github.com/ordishs/gocore"
)

// Settings is the fully-resolved startup configuration for a node.
type Settings struct {
	// NumWorkers is the fixed size of the network worker pool (spec.md §4).
	NumWorkers int

	// MinerLambdaMicros is the default inter-attempt sleep, in
	// microseconds, passed to the miner's Start when the node boots.
	MinerLambdaMicros uint64

	// ListenAddr is the multiaddr the libp2p host listens on.
	ListenAddr string

	// StaticPeers are multiaddrs (including /p2p/<id>) dialed at startup.
	// No discovery beyond this list (spec.md Non-goals: no peer discovery).
	StaticPeers []string

	// GossipTopic is the pubsub topic new-block announcements are
	// broadcast on.
	GossipTopic string

	// HTTPListenAddr serves the /health and /stats endpoints.
	HTTPListenAddr string

	// PrivateKeyHex, if set, seeds the libp2p host identity deterministically.
	PrivateKeyHex string
}

// New resolves Settings from gocore.Config(), falling back to defaults
// suited to a single local node.
func New() *Settings {
	numWorkers, _ := gocore.Config().GetInt("p2p_numWorkers", 4)
	lambda, _ := gocore.Config().GetInt("miner_lambdaMicros", 0)
	listenAddr, _ := gocore.Config().Get("p2p_listenAddr", "/ip4/0.0.0.0/tcp/9333")
	staticPeersRaw, _ := gocore.Config().Get("p2p_staticPeers", "")
	gossipTopic, _ := gocore.Config().Get("p2p_gossipTopic", "gophercoin/blocks/1.0.0")
	httpListenAddr, _ := gocore.Config().Get("node_httpListenAddress", ":8090")
	privateKeyHex, _ := gocore.Config().Get("p2p_privateKey", "")

	var staticPeers []string
	if staticPeersRaw != "" {
		for _, p := range strings.Split(staticPeersRaw, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				staticPeers = append(staticPeers, p)
			}
		}
	}

	return &Settings{
		NumWorkers:        numWorkers,
		MinerLambdaMicros: uint64(lambda),
		ListenAddr:        listenAddr,
		StaticPeers:       staticPeers,
		GossipTopic:       gossipTopic,
		HTTPListenAddr:    httpListenAddr,
		PrivateKeyHex:     privateKeyHex,
	}
}
