// Package mempool is the pending-transaction collaborator the miner pops
// from and pushes back to (spec.md §6). A single mutex guards a FIFO slice,
// grounded on the teacher's LockFreeQueue shape
// (services/blockassembly/subtreeprocessor/queue.go) but simplified to one
// lock: the core's access pattern here is pop-drain-then-optional-push-back
// from a single miner goroutine, which doesn't need a lock-free structure.
package mempool

import (
	"sync"

	"github.com/bitcoin-sv/gophercoin/model"
)

// Mempool is a FIFO of pending transactions.
type Mempool struct {
	mu  sync.Mutex
	txs []model.SignedTransaction
}

// New returns an empty Mempool.
func New() *Mempool {
	return &Mempool{}
}

// Pop removes and returns the oldest pending transaction, or false if the
// mempool is empty.
func (p *Mempool) Pop() (model.SignedTransaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.txs) == 0 {
		return model.SignedTransaction{}, false
	}

	tx := p.txs[0]
	p.txs = p.txs[1:]

	return tx, true
}

// Insert adds tx to the back of the mempool. Ordering across concurrent
// Insert/Pop calls is not otherwise specified (spec.md §6).
func (p *Mempool) Insert(tx model.SignedTransaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.txs = append(p.txs, tx)
}

// Len reports the number of pending transactions. Observational only; not
// part of the external collaborator contract.
func (p *Mempool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.txs)
}
