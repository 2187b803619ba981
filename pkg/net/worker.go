package net

import (
	"fmt"
	"sync"

	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/mempool"
)

// WorkerConfig holds the tunable parameters of the gossip worker pool.
type WorkerConfig struct {
	NumWorkers int
	Transport  Transport
	Chain      *chain.Chain
	Mempool    *mempool.Mempool
	Logger     *logger.Logger
}

// DefaultWorkerConfig returns a worker pool configuration with 4
// concurrent workers, matching the reference implementation's default
// fan-out for message handling.
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{NumWorkers: 4, Logger: logger.NewLogger(logger.DefaultConfig())}
}

// WorkerPool consumes inbound gossip messages and applies them to the
// local chain, mempool, and peer set, broadcasting anything newly
// learned back out to the network.
type WorkerPool struct {
	numWorkers int
	transport  Transport
	chain      *chain.Chain
	mempool    *mempool.Mempool
	log        *logger.Logger

	wg sync.WaitGroup
}

// NewWorkerPool builds a worker pool from cfg.
func NewWorkerPool(cfg *WorkerConfig) *WorkerPool {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewLogger(logger.DefaultConfig())
	}
	return &WorkerPool{
		numWorkers: cfg.NumWorkers,
		transport:  cfg.Transport,
		chain:      cfg.Chain,
		mempool:    cfg.Mempool,
		log:        cfg.Logger,
	}
}

// Start launches the worker pool's goroutines. Each pulls from the
// transport's shared inbox independently — there is no per-worker
// partitioning, matching the reference implementation's single shared
// channel fanned out across N OS threads.
func (w *WorkerPool) Start() {
	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		workerID := i
		go func() {
			defer w.wg.Done()
			w.loop(workerID)
		}()
	}
}

// Wait blocks until every worker goroutine has exited — this only
// happens once the transport's Inbox channel is closed.
func (w *WorkerPool) Wait() { w.wg.Wait() }

func (w *WorkerPool) loop(workerID int) {
	for inbound := range w.transport.Inbox() {
		if err := w.handle(inbound); err != nil {
			w.log.Error("net: worker %d failed to handle message from %s: %v", workerID, inbound.Peer.ID(), err)
		}
	}
}

// handle dispatches a single inbound message to its handler.
func (w *WorkerPool) handle(inbound InboundMessage) error {
	msg, peer := inbound.Message, inbound.Peer

	switch msg.Kind {
	case KindPing:
		return peer.Write(Pong(fmt.Sprintf("%d", msg.PingNonce)))

	case KindPong:
		w.log.Info("net: pong %s from %s", msg.PongNonce, peer.ID())
		return nil

	case KindNewBlockHashes:
		return w.handleNewBlockHashes(msg, peer)

	case KindGetBlocks:
		return w.handleGetBlocks(msg, peer)

	case KindBlocks:
		return w.handleBlocks(msg)

	case KindNewTransactionHashes:
		return w.handleNewTransactionHashes(msg, peer)

	case KindGetTransactions:
		return w.handleGetTransactions(msg, peer)

	case KindTransactions:
		return w.handleTransactions(msg)

	default:
		return fmt.Errorf("net: unknown message kind %d", msg.Kind)
	}
}
