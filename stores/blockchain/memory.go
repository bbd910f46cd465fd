package blockchain

import (
	"sort"
	"sync"

	"github.com/bitcoin-sv/gophercoin/model"
)

// Memory is the mutex-guarded, map-backed Store implementation. One lock
// guards the whole structure (teacher idiom, see stores/utxo/memory). Each
// inbound-message handler's store work (FilterUnknown, CollectKnown,
// ProcessBlocks) runs under a single acquisition. A mining step does not:
// the miner calls Tip, Difficulty, InsertRecursively and RecordOrigin
// separately, each taking the lock on its own.
type Memory struct {
	mu sync.Mutex

	difficulty model.Hash

	hashToBlock  map[model.Hash]*model.Block
	hashToHeight map[model.Hash]uint64
	tip          model.Hash

	// orphanBuffer maps a missing parent hash to the blocks waiting on it,
	// in arrival order.
	orphanBuffer map[model.Hash][]*model.Block

	hashToOrigin map[model.Hash]Origin
}

// New builds a Store seeded with genesis as the sole block at height 0.
func New(genesis *model.Block) *Memory {
	initPrometheusMetrics()

	hash := genesis.Hash()

	m := &Memory{
		difficulty:   genesis.Header.Difficulty,
		hashToBlock:  map[model.Hash]*model.Block{hash: genesis},
		hashToHeight: map[model.Hash]uint64{hash: 0},
		tip:          hash,
		orphanBuffer: make(map[model.Hash][]*model.Block),
		hashToOrigin: make(map[model.Hash]Origin),
	}

	prometheusBlockCount.Set(1)

	return m
}

func (m *Memory) Tip() model.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tip
}

func (m *Memory) Difficulty() model.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.difficulty
}

func (m *Memory) Contains(hash model.Hash) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.contains(hash)
}

func (m *Memory) contains(hash model.Hash) bool {
	_, ok := m.hashToBlock[hash]
	return ok
}

func (m *Memory) Get(hash model.Hash) *model.Block {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.hashToBlock[hash]
}

func (m *Memory) Height(hash model.Hash) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.hashToHeight[hash]
}

func (m *Memory) PowCheck(block *model.Block) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.powCheck(block)
}

func (m *Memory) powCheck(block *model.Block) bool {
	return block.Hash().LessOrEqual(block.Header.Difficulty) && block.Header.Difficulty == m.difficulty
}

func (m *Memory) ParentCheck(block *model.Block) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.parentCheck(block)
}

func (m *Memory) parentCheck(block *model.Block) bool {
	return m.contains(block.Header.Parent)
}

func (m *Memory) Insert(block *model.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insert(block)
}

// insert requires the caller to hold m.mu and ParentCheck to already hold.
func (m *Memory) insert(block *model.Block) {
	hash := block.Hash()
	if m.contains(hash) {
		return
	}

	height := m.hashToHeight[block.Header.Parent] + 1

	m.hashToBlock[hash] = block
	m.hashToHeight[hash] = height

	if height > m.hashToHeight[m.tip] {
		m.tip = hash
	}

	prometheusBlockCount.Set(float64(len(m.hashToBlock)))
}

func (m *Memory) AddToOrphanBuffer(block *model.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addToOrphanBuffer(block)
}

func (m *Memory) addToOrphanBuffer(block *model.Block) {
	parent := block.Header.Parent
	m.orphanBuffer[parent] = append(m.orphanBuffer[parent], block)

	prometheusOrphanBufferSize.Set(float64(m.orphanBufferLen()))
}

func (m *Memory) orphanBufferLen() int {
	n := 0
	for _, blocks := range m.orphanBuffer {
		n += len(blocks)
	}

	return n
}

func (m *Memory) InsertRecursively(block *model.Block, out *[]model.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertRecursively(block, out)
}

func (m *Memory) insertRecursively(block *model.Block, out *[]model.Hash) {
	hash := block.Hash()

	m.insert(block)
	*out = append(*out, hash)

	waiting := m.orphanBuffer[hash]
	delete(m.orphanBuffer, hash)
	prometheusOrphanBufferSize.Set(float64(m.orphanBufferLen()))

	for _, child := range waiting {
		m.insertRecursively(child, out)
	}
}

func (m *Memory) LongestChain() []model.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain := make([]model.Hash, 0, m.hashToHeight[m.tip]+1)

	cursor := m.tip
	for {
		chain = append(chain, cursor)

		block := m.hashToBlock[cursor]
		if block.Header.Parent.IsZero() && m.hashToHeight[cursor] == 0 {
			break
		}

		cursor = block.Header.Parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain
}

func (m *Memory) BlockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.hashToBlock)
}

func (m *Memory) AverageBlockSize() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.hashToBlock) == 0 {
		return 0
	}

	total := 0
	for _, b := range m.hashToBlock {
		total += b.Size()
	}

	return float64(total) / float64(len(m.hashToBlock))
}

func (m *Memory) BlockDelaysMs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	delays := make([]int64, 0, len(m.hashToOrigin))
	for _, origin := range m.hashToOrigin {
		if origin.Kind == OriginReceived {
			delays = append(delays, origin.DelayMs)
		}
	}

	sort.Slice(delays, func(i, j int) bool { return delays[i] < delays[j] })

	return delays
}

func (m *Memory) RecordOrigin(hash model.Hash, origin Origin) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hashToOrigin[hash]; ok {
		return
	}

	m.hashToOrigin[hash] = origin
}

func (m *Memory) OriginOf(hash model.Hash) (Origin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	origin, ok := m.hashToOrigin[hash]
	return origin, ok
}

func (m *Memory) FilterUnknown(hashes []model.Hash) []model.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()

	unknown := make([]model.Hash, 0, len(hashes))
	for _, h := range hashes {
		if !m.contains(h) {
			unknown = append(unknown, h)
		}
	}

	return unknown
}

func (m *Memory) CollectKnown(hashes []model.Hash) []*model.Block {
	m.mu.Lock()
	defer m.mu.Unlock()

	known := make([]*model.Block, 0, len(hashes))
	for _, h := range hashes {
		if b, ok := m.hashToBlock[h]; ok {
			known = append(known, b)
		}
	}

	return known
}

func (m *Memory) ProcessBlocks(blocks []*model.Block, nowMs int64) (missing, relayed, powRejected []model.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range blocks {
		hash := b.Hash()

		if _, ok := m.hashToOrigin[hash]; !ok {
			m.hashToOrigin[hash] = Origin{
				Kind:    OriginReceived,
				DelayMs: nowMs - int64(b.Header.Timestamp),
			}
		}

		if m.contains(hash) {
			continue
		}

		if !m.powCheck(b) {
			powRejected = append(powRejected, hash)
			continue
		}

		if !m.parentCheck(b) {
			m.addToOrphanBuffer(b)
			missing = append(missing, b.Header.Parent)
			continue
		}

		m.insertRecursively(b, &relayed)
	}

	return missing, relayed, powRejected
}
