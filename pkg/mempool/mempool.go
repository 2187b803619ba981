// Package mempool implements the transaction mempool: a FIFO-ordered
// store of signed transactions awaiting inclusion in a proposer
// block, plus the bookkeeping used to flag (but not reject) inputs
// that are spent by more than one pending transaction.
package mempool

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/metrics"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/utxo"
)

// Config holds the mempool's tunable parameters.
type Config struct {
	// Logger receives a warning whenever a transaction reuses an input
	// already claimed by a pending transaction.
	Logger *logger.Logger
	// Metrics is optional; when set, the mempool's size gauge is kept
	// current on every insert and delete.
	Metrics *metrics.Registry
}

// DefaultConfig returns the mempool configuration used in production.
func DefaultConfig() *Config {
	return &Config{Logger: logger.NewLogger(logger.DefaultConfig())}
}

// entry wraps a pending transaction with the list element that fixes
// its FIFO position, so deletion is O(1) rather than a linear scan.
type entry struct {
	tx   *utxo.SignedTransaction
	elem *list.Element
}

// Mempool is a FIFO-ordered pool of admitted, not-yet-confirmed
// transactions, keyed by transaction hash.
type Mempool struct {
	mu      sync.RWMutex
	log     *logger.Logger
	metrics *metrics.Registry
	order   *list.List // FIFO order, each Value is a transaction hash
	entries map[crypto.H256]*entry
	inputs  map[utxo.Input]struct{} // every input claimed by a pending transaction
}

// New creates an empty mempool.
func New(cfg *Config) *Mempool {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Mempool{
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		order:   list.New(),
		entries: make(map[crypto.H256]*entry),
		inputs:  make(map[utxo.Input]struct{}),
	}
}

func (m *Mempool) recordSize() {
	if m.metrics != nil {
		m.metrics.MempoolSize.Set(float64(m.order.Len()))
	}
}

// Insert admits tx into the pool. If any of tx's inputs is already
// claimed by another pending transaction, this is logged as a
// potential double spend but tx is still admitted — resolving which
// conflicting transaction ultimately confirms is left to block
// inclusion order, not mempool admission.
func (m *Mempool) Insert(tx *utxo.SignedTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := tx.Hash()
	key := hash

	for _, in := range tx.Tx.Inputs {
		if _, claimed := m.inputs[in]; claimed {
			err := fmt.Errorf("mempool: transaction %s claims input %v already pending: %w", hash, in, perrors.ErrDuplicateSpendInMempool)
			m.log.Warn("mempool: %v", err)
		}
		m.inputs[in] = struct{}{}
	}

	elem := m.order.PushBack(key)
	m.entries[key] = &entry{tx: tx, elem: elem}
	m.recordSize()
}

// Get returns the pending transaction for hash, if present.
func (m *Mempool) Get(hash crypto.H256) (*utxo.SignedTransaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[hash]
	if !ok {
		return nil, false
	}
	return e.tx, true
}

// Contains reports whether hash is currently pending.
func (m *Mempool) Contains(hash crypto.H256) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[hash]
	return ok
}

// ContainsInput reports whether in is claimed by any pending transaction.
func (m *Mempool) ContainsInput(in utxo.Input) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.inputs[in]
	return ok
}

// Delete removes hash from the pool. It reports whether hash was present.
func (m *Mempool) Delete(hash crypto.H256) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[hash]
	if !ok {
		m.log.Warn("mempool: attempted to delete non-existent transaction %s", hash)
		return false
	}
	for _, in := range e.tx.Tx.Inputs {
		delete(m.inputs, in)
	}
	m.order.Remove(e.elem)
	delete(m.entries, hash)
	m.recordSize()
	return true
}

// GetTransactions returns up to n pending transactions, oldest first.
func (m *Mempool) GetTransactions(n int) []*utxo.SignedTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > m.order.Len() {
		n = m.order.Len()
	}
	out := make([]*utxo.SignedTransaction, 0, n)
	for e := m.order.Front(); e != nil && len(out) < n; e = e.Next() {
		key := e.Value.(crypto.H256)
		out = append(out, m.entries[key].tx)
	}
	return out
}

// Len returns the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order.Len()
}
