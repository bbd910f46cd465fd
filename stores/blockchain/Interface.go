// Package blockchain owns the authoritative in-memory block-tree: storage,
// fork-choice, PoW gating and orphan reconciliation.
package blockchain

import (
	"github.com/bitcoin-sv/gophercoin/model"
)

// OriginKind records how a block first entered the store.
type OriginKind int

const (
	// OriginUnknown marks a block with no recorded origin yet.
	OriginUnknown OriginKind = iota
	// OriginMined marks a block produced by this node's own miner.
	OriginMined
	// OriginReceived marks a block that arrived over the network.
	OriginReceived
)

// Origin is the origin bookkeeping entry for one block: how it arrived and,
// for received blocks, how long after its declared timestamp it was seen.
type Origin struct {
	Kind    OriginKind
	DelayMs int64
}

// Store is the block-tree contract spec.md §4.1 describes. A single
// implementation (Memory) backs it; the interface exists so the miner and
// network worker depend on behavior, not on the map-based representation.
type Store interface {
	// Tip returns the current best leaf's hash.
	Tip() model.Hash

	// Difficulty returns the store's single, lifetime-constant PoW target.
	Difficulty() model.Hash

	// Contains reports membership in the block-tree.
	Contains(hash model.Hash) bool

	// Get returns the block stored under hash. Callers must gate with
	// Contains first; calling Get on a non-member hash is a caller bug.
	Get(hash model.Hash) *model.Block

	// Height returns the height of the block stored under hash. Callers
	// must gate with Contains first.
	Height(hash model.Hash) uint64

	// PowCheck reports whether block's hash satisfies the store's
	// difficulty and the block declares that same difficulty.
	PowCheck(block *model.Block) bool

	// ParentCheck reports whether block's declared parent is a member of
	// the store.
	ParentCheck(block *model.Block) bool

	// Insert stores block under its hash. Precondition: ParentCheck(block)
	// holds. Updates the tip iff the new block's height strictly exceeds
	// the current tip's height (first-seen wins on ties).
	Insert(block *model.Block)

	// AddToOrphanBuffer parks block under its declared parent hash.
	// Precondition: PowCheck(block) holds and ParentCheck(block) does not.
	AddToOrphanBuffer(block *model.Block)

	// InsertRecursively inserts block (idempotent if already present),
	// appends its hash to out, and then drains and recursively inserts any
	// orphans that were waiting on block's hash, in buffer order.
	InsertRecursively(block *model.Block, out *[]model.Hash)

	// LongestChain walks parent pointers from the tip back to genesis and
	// returns the hashes in genesis-to-tip order.
	LongestChain() []model.Hash

	// BlockCount returns the number of blocks in the store, genesis
	// included.
	BlockCount() int

	// AverageBlockSize returns the mean Block.Size() across the store, or
	// 0 if the store is empty.
	AverageBlockSize() float64

	// BlockDelaysMs returns the recorded OriginReceived delays, sorted
	// ascending.
	BlockDelaysMs() []int64

	// RecordOrigin records how a block first entered the store, iff no
	// origin is currently recorded for that hash (first-sighting wins).
	RecordOrigin(hash model.Hash, origin Origin)

	// OriginOf returns the recorded origin for hash, if any.
	OriginOf(hash model.Hash) (Origin, bool)

	// FilterUnknown returns the subset of hashes not present in the store,
	// preserving order. Used by the NewBlockHashes handler (spec.md §4.3);
	// the whole scan runs under one lock acquisition so the result is a
	// consistent snapshot.
	FilterUnknown(hashes []model.Hash) []model.Hash

	// CollectKnown returns the blocks in the store whose hash is in
	// hashes, preserving the order of hashes. Used by the GetBlocks
	// handler.
	CollectKnown(hashes []model.Hash) []*model.Block

	// ProcessBlocks runs the Blocks(B) handler's per-block sequence from
	// spec.md §4.3 under one lock acquisition: record origin (first-seen
	// wins, with delay computed against nowMs), skip duplicates, skip and
	// report PoW failures, park and report orphans, or insert (and any
	// descendants it unblocks). Returns the parent hashes to re-request
	// and the hashes to relay, both in processing order.
	ProcessBlocks(blocks []*model.Block, nowMs int64) (missing, relayed, powRejected []model.Hash)
}
