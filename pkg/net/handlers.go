package net

import (
	"fmt"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/utxo"
	"github.com/prism-labs/prism/pkg/validation"
)

// handleNewBlockHashes requests full blocks for any hash we don't
// already have.
func (w *WorkerPool) handleNewBlockHashes(msg Message, peer PeerHandle) error {
	var missing []crypto.H256
	for _, h := range msg.BlockHashes {
		if !w.chain.HasBlock(h) {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return peer.Write(GetBlocks(missing))
}

// handleGetBlocks replies with every requested block we have locally.
func (w *WorkerPool) handleGetBlocks(msg Message, peer PeerHandle) error {
	var found []*block.Block
	for _, h := range msg.BlockHashes {
		if b, ok := w.chain.GetBlock(h); ok {
			found = append(found, b)
		} else {
			w.log.Info("net: blocksdb does not contain %s", h)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return peer.Write(Blocks(found))
}

// handleBlocks validates and inserts each received block, broadcasting
// only the ones that actually link (StatusValid) — the reference
// implementation's `if let result = InsertStatus::Valid` pattern is an
// irrefutable binding that always matches, so it rebroadcast every
// received hash regardless of whether the block actually inserted
// cleanly or was buffered as an orphan; this checks the real status.
func (w *WorkerPool) handleBlocks(msg Message) error {
	numVoterChains := w.chain.NumVoterChains()
	var validHashes []crypto.H256

	for _, b := range msg.Blocks {
		hash := b.Hash()
		if w.chain.HasBlock(hash) {
			continue
		}
		if err := validation.CheckPoWSortitionID(b, numVoterChains); err != nil {
			w.log.Warn("net: block %s failed pow/sortition check: %v", hash, err)
			continue
		}
		if err := validation.CheckSortitionProof(b, numVoterChains); err != nil {
			w.log.Warn("net: block %s failed sortition proof check: %v", hash, err)
			continue
		}
		if status := w.chain.Insert(b); status == chain.StatusValid {
			validHashes = append(validHashes, hash)
		}
	}

	if len(validHashes) == 0 {
		return nil
	}
	if err := w.transport.Broadcast(NewBlockHashes(validHashes)); err != nil {
		return fmt.Errorf("net: broadcasting %d new block hashes: %v: %w", len(validHashes), err, perrors.ErrTransportError)
	}
	return nil
}

// handleNewTransactionHashes requests any advertised transaction hash
// not already pending in the local mempool.
func (w *WorkerPool) handleNewTransactionHashes(msg Message, peer PeerHandle) error {
	var missing []crypto.H256
	for _, h := range msg.TxHashes {
		if !w.mempool.Contains(h) {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return peer.Write(GetTransactions(missing))
}

// handleGetTransactions replies with every requested pending transaction.
func (w *WorkerPool) handleGetTransactions(msg Message, peer PeerHandle) error {
	var found []*utxo.SignedTransaction
	for _, h := range msg.TxHashes {
		if tx, ok := w.mempool.Get(h); ok {
			found = append(found, tx)
		} else {
			w.log.Info("net: mempool does not contain %s", h)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return peer.Write(Transactions(found))
}

// handleTransactions admits each newly seen transaction into the
// mempool and rebroadcasts its hash.
func (w *WorkerPool) handleTransactions(msg Message) error {
	var newHashes []crypto.H256
	for _, tx := range msg.Transactions {
		hash := tx.Hash()
		if w.mempool.Contains(hash) {
			continue
		}
		w.mempool.Insert(tx)
		newHashes = append(newHashes, hash)
	}
	if len(newHashes) == 0 {
		return nil
	}
	if err := w.transport.Broadcast(NewTransactionHashes(newHashes)); err != nil {
		return fmt.Errorf("net: broadcasting %d new transaction hashes: %v: %w", len(newHashes), err, perrors.ErrTransportError)
	}
	return nil
}
