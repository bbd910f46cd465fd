package p2p

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitcoin-sv/gophercoin/model"
	"github.com/bitcoin-sv/gophercoin/stores/blockchain"
	"github.com/bitcoin-sv/gophercoin/ulogger"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	mu  sync.Mutex
	got []Message
}

func (f *fakePeer) Write(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, msg)
	return nil
}

func (f *fakePeer) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.got))
	copy(out, f.got)
	return out
}

type fakeNetwork struct {
	mu        sync.Mutex
	broadcast []Message
}

func (f *fakeNetwork) Broadcast(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, msg)
}

func (f *fakeNetwork) broadcasts() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.broadcast))
	copy(out, f.broadcast)
	return out
}

var easyDifficulty = model.DifficultyFromLeadingZeroBits(0)

func testGenesis() *model.Block {
	return model.NewBlock(&model.BlockHeader{Difficulty: easyDifficulty}, nil)
}

func childOf(parent model.Hash, nonce uint64) *model.Block {
	return model.NewBlock(&model.BlockHeader{
		Parent:     parent,
		Nonce:      nonce,
		Difficulty: easyDifficulty,
		Timestamp:  uint64(nonce),
	}, nil)
}

func newTestPool(store blockchain.Store, net Network) *Pool {
	return NewPool(2, store, net, ulogger.TestLogger())
}

func TestHandlePingRepliesPongToSenderOnly(t *testing.T) {
	store := blockchain.New(testGenesis())
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	peer := &fakePeer{}
	pool.handle(InboundMessage{Msg: NewPing(7), From: peer})

	require.Equal(t, []Message{NewPong(7)}, peer.messages())
	require.Empty(t, net.broadcasts())
}

func TestHandleNewBlockHashesRequestsUnknownOnly(t *testing.T) {
	genesis := testGenesis()
	store := blockchain.New(genesis)
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	b1 := childOf(genesis.Hash(), 1)
	store.Insert(b1)

	unknown := childOf(b1.Hash(), 2)

	peer := &fakePeer{}
	pool.handle(InboundMessage{
		Msg:  NewNewBlockHashes([]model.Hash{genesis.Hash(), b1.Hash(), unknown.Hash()}),
		From: peer,
	})

	require.Equal(t, []Message{NewGetBlocks([]model.Hash{unknown.Hash()})}, peer.messages())
}

func TestHandleGetBlocksRepliesWithKnownBlocksInRequestOrder(t *testing.T) {
	genesis := testGenesis()
	store := blockchain.New(genesis)
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	b1 := childOf(genesis.Hash(), 1)
	store.Insert(b1)

	peer := &fakePeer{}
	pool.handle(InboundMessage{
		Msg:  NewGetBlocks([]model.Hash{b1.Hash(), genesis.Hash()}),
		From: peer,
	})

	got := peer.messages()
	require.Len(t, got, 1)
	require.Equal(t, KindBlocks, got[0].Kind)
	require.Equal(t, []model.Hash{b1.Hash(), genesis.Hash()}, []model.Hash{got[0].Blocks[0].Hash(), got[0].Blocks[1].Hash()})
}

func TestHandleBlocksOrphanThenReconciliation(t *testing.T) {
	genesis := testGenesis()
	store := blockchain.New(genesis)
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	b1 := childOf(genesis.Hash(), 1)
	b2 := childOf(b1.Hash(), 2)

	peer := &fakePeer{}
	pool.handle(InboundMessage{Msg: NewBlocks([]*model.Block{b2}), From: peer})

	require.False(t, store.Contains(b2.Hash()))
	require.Equal(t, []Message{NewGetBlocks([]model.Hash{b1.Hash()})}, peer.messages())

	pool.handle(InboundMessage{Msg: NewBlocks([]*model.Block{b1}), From: peer})

	require.True(t, store.Contains(b1.Hash()))
	require.True(t, store.Contains(b2.Hash()))

	broadcasts := net.broadcasts()
	require.Len(t, broadcasts, 1)
	require.Equal(t, KindNewBlockHashes, broadcasts[0].Kind)
	require.Equal(t, []model.Hash{b1.Hash(), b2.Hash()}, broadcasts[0].Hashes)
}

func TestHandleBlocksDuplicateSuppression(t *testing.T) {
	genesis := testGenesis()
	store := blockchain.New(genesis)
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	b1 := childOf(genesis.Hash(), 1)

	peer := &fakePeer{}
	pool.handle(InboundMessage{Msg: NewBlocks([]*model.Block{b1}), From: peer})
	require.Equal(t, 2, store.BlockCount())
	require.Len(t, net.broadcasts(), 1)

	pool.handle(InboundMessage{Msg: NewBlocks([]*model.Block{b1}), From: peer})
	require.Equal(t, 2, store.BlockCount(), "duplicate delivery must not grow the store")
	require.Len(t, net.broadcasts(), 1, "duplicate delivery must not trigger another broadcast")
}

func TestHandleBlocksPowRejection(t *testing.T) {
	genesis := model.NewBlock(&model.BlockHeader{Difficulty: model.DifficultyFromLeadingZeroBits(64)}, nil)
	store := blockchain.New(genesis)
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	bad := childOf(genesis.Hash(), 1) // declares easyDifficulty, not the store's difficulty

	peer := &fakePeer{}
	pool.handle(InboundMessage{Msg: NewBlocks([]*model.Block{bad}), From: peer})

	require.False(t, store.Contains(bad.Hash()))
	require.Empty(t, peer.messages())
	require.Empty(t, net.broadcasts())
}

// TestAnnounceRequestRoundTrip is scenario 6: node A mines b, node B receives
// NewBlockHashes, requests it, A serves it, B ends up with b in its store
// and re-broadcasts the announcement.
func TestAnnounceRequestRoundTrip(t *testing.T) {
	genesisA := testGenesis()
	storeA := blockchain.New(genesisA)
	netA := &fakeNetwork{}
	poolA := newTestPool(storeA, netA)

	b := childOf(genesisA.Hash(), 1)
	storeA.Insert(b)

	genesisB := testGenesis()
	storeB := blockchain.New(genesisB)
	netB := &fakeNetwork{}
	poolB := newTestPool(storeB, netB)

	aPeer := &fakePeer{} // B's view of A: calls here are requests TO A
	poolB.handle(InboundMessage{Msg: NewNewBlockHashes([]model.Hash{b.Hash()}), From: aPeer})

	request := aPeer.messages()
	require.Equal(t, []Message{NewGetBlocks([]model.Hash{b.Hash()})}, request)

	bPeer := &fakePeer{}
	poolA.handle(InboundMessage{Msg: request[0], From: bPeer})

	delivery := bPeer.messages()
	require.Len(t, delivery, 1)
	require.Equal(t, KindBlocks, delivery[0].Kind)

	poolB.handle(InboundMessage{Msg: delivery[0], From: aPeer})

	require.True(t, storeB.Contains(b.Hash()))
	require.Len(t, netB.broadcasts(), 1)
	require.Equal(t, NewNewBlockHashes([]model.Hash{b.Hash()}), netB.broadcasts()[0])
}

func TestPoolRunProcessesSubmittedMessages(t *testing.T) {
	genesis := testGenesis()
	store := blockchain.New(genesis)
	net := &fakeNetwork{}
	pool := newTestPool(store, net)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Run(ctx)

	peer := &fakePeer{}
	pool.Submit(InboundMessage{Msg: NewPing(1), From: peer})

	require.Eventually(t, func() bool {
		return len(peer.messages()) == 1
	}, time.Second, time.Millisecond)
}
