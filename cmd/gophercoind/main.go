// Command gophercoind runs a single gophercoin node: the in-memory
// block-tree store, the mempool, the miner loop, the network worker pool,
// the libp2p transport, and the status HTTP server, all in one process.
//
// Grounded on the teacher's main.go init()/gocore.Log idiom, trimmed to a
// single always-on node — this node has no per-service CLI toggles or
// subcommand dispatch the way the teacher's multi-binary main() does, since
// every component here always runs together.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitcoin-sv/gophercoin/config"
	"github.com/bitcoin-sv/gophercoin/model"
	"github.com/bitcoin-sv/gophercoin/services/httpapi"
	"github.com/bitcoin-sv/gophercoin/services/mempool"
	"github.com/bitcoin-sv/gophercoin/services/miner"
	"github.com/bitcoin-sv/gophercoin/services/p2p"
	"github.com/bitcoin-sv/gophercoin/services/p2p/transport"
	"github.com/bitcoin-sv/gophercoin/stores/blockchain"
	"github.com/bitcoin-sv/gophercoin/ulogger"
	"github.com/ordishs/gocore"
)

const progname = "gophercoind"

var version string
var commit string

func init() {
	gocore.SetInfo(progname, version, commit)
	gocore.Log(progname)
}

func main() {
	logger := ulogger.New(progname)

	stats := gocore.Config().Stats()
	logger.Infof("STATS\n%s\nVERSION\n-------\n%s (%s)\n\n", stats, version, commit)

	settings := config.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	genesis := model.Genesis()
	store := blockchain.New(genesis)
	logger.Infof("genesis: %s", genesis.Hash())

	pool := mempool.New()

	node, err := transport.New(logger, transport.Config{
		ListenAddr:    settings.ListenAddr,
		PrivateKeyHex: settings.PrivateKeyHex,
		GossipTopic:   settings.GossipTopic,
		StaticPeers:   settings.StaticPeers,
	})
	if err != nil {
		logger.Fatalf("error creating transport: %v", err)
	}

	workerPool := p2p.NewPool(settings.NumWorkers, store, node, logger)

	if err := node.Start(ctx, workerPool); err != nil {
		logger.Fatalf("error starting transport: %v", err)
	}

	workerPool.Run(ctx)

	m := miner.New(store, pool, node, logger)
	go m.Run(ctx)
	m.Start(settings.MinerLambdaMicros)

	httpServer := httpapi.New(store, logger)
	go func() {
		if err := httpServer.Start(settings.HTTPListenAddr); err != nil {
			logger.Errorf("http server stopped: %v", err)
		}
	}()

	logger.Infof("gophercoind listening: p2p=%s http=%s peer=%s", settings.ListenAddr, settings.HTTPListenAddr, node.HostID())

	waitForShutdown(logger, m, cancel)
}

// waitForShutdown blocks until SIGINT/SIGTERM, then shuts the miner down and
// cancels the node's context so the worker pool and transport wind down.
func waitForShutdown(logger ulogger.Logger, m *miner.Miner, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Infof("received signal %s, shutting down", sig)

	m.Exit()
	cancel()

	time.Sleep(200 * time.Millisecond)
	logger.Infof("gophercoind stopped")
}
