// Package miner implements the block producer: a control-channel-driven
// state machine that, while running, makes one mining attempt per
// iteration against the shared block-tree and mempool (spec.md §4.2).
package miner

import (
	"context"
	"crypto/rand"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/bitcoin-sv/gophercoin/model"
	"github.com/bitcoin-sv/gophercoin/services/mempool"
	"github.com/bitcoin-sv/gophercoin/services/p2p"
	"github.com/bitcoin-sv/gophercoin/stores/blockchain"
	"github.com/bitcoin-sv/gophercoin/ulogger"
	"github.com/looplab/fsm"
)

const (
	statePaused   = "paused"
	stateRunning  = "running"
	stateShutdown = "shutdown"

	eventStart = "start"
	eventExit  = "exit"
)

// maxTxsPerBlock is the spec.md §4.2 "pop up to 10 transactions" cap.
const maxTxsPerBlock = 10

// SignalKind tags a ControlSignal.
type SignalKind int

const (
	// SignalStart transitions to Run(lambda).
	SignalStart SignalKind = iota
	// SignalExit transitions to ShutDown.
	SignalExit
)

// ControlSignal is the single control-channel message type the miner
// accepts (spec.md §4.2, §6).
type ControlSignal struct {
	Kind   SignalKind
	Lambda uint64 // inter-attempt sleep in microseconds; 0 disables it
}

// Miner owns the mining loop. Construct with New, drive it with Run, and
// control it from another goroutine via Start/Exit.
type Miner struct {
	store   blockchain.Store
	mempool *mempool.Mempool
	network p2p.Broadcaster
	logger  ulogger.Logger

	control chan ControlSignal
	fsm     *fsm.FSM

	mu        sync.Mutex
	lambda    uint64
	started   bool
	startTime time.Time

	totalBlocksMined uint64
}

// New constructs a Miner in the Paused state.
func New(store blockchain.Store, pool *mempool.Mempool, network p2p.Broadcaster, logger ulogger.Logger) *Miner {
	initPrometheusMetrics()

	m := &Miner{
		store:   store,
		mempool: pool,
		network: network,
		logger:  logger,
		control: make(chan ControlSignal, 1),
	}

	m.fsm = fsm.NewFSM(statePaused, fsm.Events{
		{Name: eventStart, Src: []string{statePaused, stateRunning}, Dst: stateRunning},
		{Name: eventExit, Src: []string{statePaused, stateRunning}, Dst: stateShutdown},
	}, fsm.Callbacks{})

	return m
}

// Start sends Start(lambda) over the control channel. Blocks if the
// channel is full (capacity 1) until the previous signal is drained.
func (m *Miner) Start(lambda uint64) {
	m.control <- ControlSignal{Kind: SignalStart, Lambda: lambda}
}

// Exit sends Exit over the control channel.
func (m *Miner) Exit() {
	m.control <- ControlSignal{Kind: SignalExit}
}

// Run drives the mining loop until ShutDown. A poisoned block-tree or a
// disconnected control channel is fatal to the process (spec.md §4.2,
// §7): Run recovers nothing and lets a panic from those surface.
func (m *Miner) Run(ctx context.Context) {
	for {
		switch m.fsm.Current() {
		case statePaused:
			select {
			case <-ctx.Done():
				return
			case sig := <-m.control:
				m.apply(ctx, sig)
			}

		case stateRunning:
			select {
			case sig := <-m.control:
				m.apply(ctx, sig)
			default:
			}

			if m.fsm.Current() != stateRunning {
				continue
			}

			if lambda := m.currentLambda(); lambda > 0 {
				time.Sleep(time.Duration(lambda) * time.Microsecond)
			}

			m.attemptMiningStep()

		case stateShutdown:
			return
		}
	}
}

func (m *Miner) currentLambda() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lambda
}

func (m *Miner) apply(ctx context.Context, sig ControlSignal) {
	switch sig.Kind {
	case SignalStart:
		m.mu.Lock()
		m.lambda = sig.Lambda
		if !m.started {
			m.started = true
			m.startTime = time.Now()
		}
		m.mu.Unlock()

		if err := m.fsm.Event(ctx, eventStart); err != nil {
			m.logger.Warnf("[miner] start event rejected: %v", err)
		}

	case SignalExit:
		if err := m.fsm.Event(ctx, eventExit); err != nil {
			m.logger.Warnf("[miner] exit event rejected: %v", err)
		}
		if m.hasStarted() {
			m.logStats()
		}
	}
}

func (m *Miner) hasStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// attemptMiningStep is exactly spec.md §4.2's single mining attempt: read
// tip+difficulty, draw up to 10 mempool transactions (a filler transaction
// if none are pending), compute the Merkle root, draw a random nonce and
// timestamp, and insert-and-broadcast on success or return transactions to
// the mempool on failure.
func (m *Miner) attemptMiningStep() {
	start := time.Now()

	parent := m.store.Tip()
	difficulty := m.store.Difficulty()

	txs := m.popUpToN(maxTxsPerBlock)
	filler := len(txs) == 0
	if filler {
		txs = []model.SignedTransaction{{}}
	}

	merkleRoot := model.NewMerkleTree(txs).Root()
	nonce := randomNonce()
	timestamp := uint64(time.Now().UnixMilli())

	header := &model.BlockHeader{
		Parent:     parent,
		Nonce:      nonce,
		Difficulty: difficulty,
		Timestamp:  timestamp,
		MerkleRoot: merkleRoot,
	}

	candidate := model.NewBlock(header, txs)

	if candidate.Hash().LessOrEqual(difficulty) {
		var out []model.Hash
		m.store.InsertRecursively(candidate, &out)
		m.store.RecordOrigin(candidate.Hash(), blockchain.Origin{Kind: blockchain.OriginMined})

		m.mu.Lock()
		m.totalBlocksMined++
		m.mu.Unlock()

		prometheusBlockMined.Inc()
		prometheusBlockMinedDuration.Observe(time.Since(start).Seconds())

		m.network.Broadcast(p2p.NewNewBlockHashes([]model.Hash{candidate.Hash()}))
		return
	}

	// Failed attempt: return the selected transactions to the mempool.
	// The filler transaction (mempool was empty) is not real pending work
	// and is simply discarded.
	if !filler {
		for _, tx := range txs {
			m.mempool.Insert(tx)
		}
	}
}

func (m *Miner) popUpToN(n int) []model.SignedTransaction {
	txs := make([]model.SignedTransaction, 0, n)
	for i := 0; i < n; i++ {
		tx, ok := m.mempool.Pop()
		if !ok {
			break
		}
		txs = append(txs, tx)
	}
	return txs
}

func randomNonce() uint64 {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	if err != nil {
		return uint64(time.Now().UnixNano())
	}
	return n.Uint64()
}

// logStats dumps cumulative mining statistics on Exit, per spec.md §4.2 and
// the original implementation's end-of-run report (original_source/src/miner.rs).
func (m *Miner) logStats() {
	elapsed := time.Since(m.startTime).Seconds()

	m.mu.Lock()
	mined := m.totalBlocksMined
	m.mu.Unlock()

	rate := 0.0
	if elapsed > 0 {
		rate = float64(mined) / elapsed
	}

	chain := m.store.LongestChain()
	avgSize := m.store.AverageBlockSize()
	delays := append([]int64(nil), m.store.BlockDelaysMs()...)
	sort.Slice(delays, func(i, j int) bool { return delays[i] < delays[j] })

	m.logger.Infof("[miner] stopped: mined=%d elapsed=%.2fs rate=%.4f blocks/s blockCount=%d avgBlockSize=%.1f delaysMs=%v chain=%v",
		mined, elapsed, rate, m.store.BlockCount(), avgSize, delays, chain)
}
