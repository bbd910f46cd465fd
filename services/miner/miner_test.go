package miner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitcoin-sv/gophercoin/model"
	"github.com/bitcoin-sv/gophercoin/services/mempool"
	"github.com/bitcoin-sv/gophercoin/services/p2p"
	"github.com/bitcoin-sv/gophercoin/stores/blockchain"
	"github.com/bitcoin-sv/gophercoin/ulogger"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	mu  sync.Mutex
	got []p2p.Message
}

func (f *fakeBroadcaster) Broadcast(msg p2p.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, msg)
}

func (f *fakeBroadcaster) messages() []p2p.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]p2p.Message, len(f.got))
	copy(out, f.got)
	return out
}

// easyGenesis accepts every hash so mining succeeds on the first attempt.
func easyGenesis() *model.Block {
	return model.NewBlock(&model.BlockHeader{
		Difficulty: model.DifficultyFromLeadingZeroBits(0),
	}, nil)
}

func TestAttemptMiningStepInsertsAndBroadcastsOnSuccess(t *testing.T) {
	genesis := easyGenesis()
	store := blockchain.New(genesis)
	pool := mempool.New()
	net := &fakeBroadcaster{}

	m := New(store, pool, net, ulogger.TestLogger())

	m.attemptMiningStep()

	require.Equal(t, 2, store.BlockCount())
	require.Len(t, net.messages(), 1)
	require.Equal(t, p2p.KindNewBlockHashes, net.messages()[0].Kind)
	require.Equal(t, store.Tip(), net.messages()[0].Hashes[0])

	origin, ok := store.OriginOf(store.Tip())
	require.True(t, ok)
	require.Equal(t, blockchain.OriginMined, origin.Kind)
}

func TestAttemptMiningStepReturnsTransactionsToMempoolOnFailure(t *testing.T) {
	genesis := model.NewBlock(&model.BlockHeader{
		Difficulty: model.DifficultyFromLeadingZeroBits(64),
	}, nil)
	store := blockchain.New(genesis)
	pool := mempool.New()
	net := &fakeBroadcaster{}

	tx := model.SignedTransaction{Raw: model.RawTransaction{Nonce: 1}}
	pool.Insert(tx)

	m := New(store, pool, net, ulogger.TestLogger())
	m.attemptMiningStep()

	require.Equal(t, 1, store.BlockCount(), "no block should have been inserted")
	require.Empty(t, net.messages())

	got, ok := pool.Pop()
	require.True(t, ok)
	require.Equal(t, tx, got)
}

func TestRunStartPausedRunningExit(t *testing.T) {
	genesis := easyGenesis()
	store := blockchain.New(genesis)
	pool := mempool.New()
	net := &fakeBroadcaster{}

	m := New(store, pool, net, ulogger.TestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	m.Start(0)

	require.Eventually(t, func() bool {
		return store.BlockCount() > 1
	}, time.Second, time.Millisecond)

	m.Exit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("miner did not shut down after Exit")
	}
}
