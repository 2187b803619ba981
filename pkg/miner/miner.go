// Package miner implements the unified sortition miner: it assembles
// a superblock containing a proposer chain candidate and one voter
// chain candidate per voter chain, grinds nonces until one of those
// candidates satisfies the sortition difficulty, and inserts whichever
// candidate sortition selects into the local chain.
package miner

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"context"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/mempool"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/net"
	"github.com/prism-labs/prism/pkg/sortition"
	"github.com/prism-labs/prism/pkg/utxo"
)

// Config holds the miner's wiring.
type Config struct {
	Chain     *chain.Chain
	Mempool   *mempool.Mempool
	Transport net.Transport
	Logger    *logger.Logger

	// TransactionsPerBlock caps how many pending transactions a single
	// proposer candidate carries, matching the reference miner's
	// fixed batch size of 5.
	TransactionsPerBlock int
}

// DefaultConfig returns a miner configuration batching 5 transactions
// per proposer candidate, matching the reference implementation.
func DefaultConfig() *Config {
	return &Config{
		TransactionsPerBlock: 5,
		Logger:               logger.NewLogger(logger.DefaultConfig()),
	}
}

// StartSignal carries the parameters of a Start command: Lambda is the
// delay observed between mining attempts when the mempool is empty,
// and MinerID tags every block this miner produces.
type StartSignal struct {
	Lambda  time.Duration
	MinerID int32
}

// Miner is a control-channel-driven mining loop: Run launches it
// paused, Start moves it into continuous mining with the given
// parameters, and Exit shuts it down. Paused/running state lives
// entirely in the control loop goroutine, mirroring the reference
// implementation's OperatingState machine.
type Miner struct {
	mu sync.RWMutex

	chain     *chain.Chain
	mempool   *mempool.Mempool
	transport net.Transport
	log       *logger.Logger
	txBatch   int

	startChan chan StartSignal
	ctx       context.Context
	cancel    context.CancelFunc

	running bool
}

// New builds a miner from cfg, ready for Run.
func New(cfg *Config) *Miner {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewLogger(logger.DefaultConfig())
	}
	if cfg.TransactionsPerBlock == 0 {
		cfg.TransactionsPerBlock = 5
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Miner{
		chain:     cfg.Chain,
		mempool:   cfg.Mempool,
		transport: cfg.Transport,
		log:       cfg.Logger,
		txBatch:   cfg.TransactionsPerBlock,
		startChan: make(chan StartSignal),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Run launches the control loop in a goroutine. The miner stays paused
// until Start is called.
func (m *Miner) Run() {
	m.log.Info("miner: initialized into paused mode")
	go m.controlLoop()
}

// Start moves the miner into continuous mining mode with interval
// lambda observed between idle retries, and minerID tagging every
// mined block. Calling Start again while already running updates the
// parameters of the running loop rather than spawning a second one.
func (m *Miner) Start(lambda time.Duration, minerID int32) {
	select {
	case m.startChan <- StartSignal{Lambda: lambda, MinerID: minerID}:
	case <-m.ctx.Done():
	}
}

// Exit shuts the miner down. It does not block for the loop to observe it.
func (m *Miner) Exit() { m.cancel() }

// IsRunning reports whether the mining loop is currently in its
// continuous-mining state rather than paused.
func (m *Miner) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Miner) setRunning(v bool) {
	m.mu.Lock()
	m.running = v
	m.mu.Unlock()
}

func (m *Miner) controlLoop() {
	for {
		select {
		case <-m.ctx.Done():
			m.log.Info("miner: shutting down")
			m.setRunning(false)
			return
		case sig := <-m.startChan:
			m.log.Info("miner: starting continuous mode with lambda %s", sig.Lambda)
			m.setRunning(true)
			m.mineContinuously(sig)
			m.setRunning(false)
		}
	}
}

// mineContinuously runs until the context is cancelled, re-reading sig
// whenever Start is called again with updated parameters.
func (m *Miner) mineContinuously(sig StartSignal) {
	for {
		select {
		case <-m.ctx.Done():
			return
		case next := <-m.startChan:
			sig = next
			m.log.Info("miner: updated lambda to %s", sig.Lambda)
		default:
		}

		txs := m.mempool.GetTransactions(m.txBatch)
		if len(txs) == 0 {
			if m.sleep(sig.Lambda) {
				return
			}
			continue
		}

		if !m.mineOneBlock(txs, sig.MinerID, sig.Lambda) {
			return
		}
	}
}

// mineOneBlock assembles a superblock candidate per chain, grinding
// random nonces until one candidate's header hash satisfies sortition
// difficulty. The candidates are reassembled from the current tips on
// every attempt; when a new proposer has landed since the last check,
// the transaction batch is also re-read from the mempool — matching
// has_new_proposer's role in the reference miner_loop.
// Returns false only if the context was cancelled mid-grind.
func (m *Miner) mineOneBlock(txs []*utxo.SignedTransaction, minerID int32, lambda time.Duration) bool {
	for {
		select {
		case <-m.ctx.Done():
			return false
		default:
		}

		if m.chain.HasNewProposer() {
			txs = m.mempool.GetTransactions(m.txBatch)
			if len(txs) == 0 {
				if m.sleep(lambda) {
					return false
				}
				return true
			}
		}

		numVoterChains := m.chain.NumVoterChains()
		contents := m.assembleContents(txs, numVoterChains)
		tree := crypto.NewTree(contents)
		difficulty := sortition.Difficulty(numVoterChains)

		header := block.Header{
			Nonce:      randomNonce(),
			Difficulty: difficulty,
			Timestamp:  nowMicros(),
			MerkleRoot: tree.Root(),
			MinerID:    minerID,
		}

		blockHash := header.Hash()
		if !blockHash.Less(difficulty) {
			continue
		}

		idx, ok := sortition.SortitionID(blockHash, difficulty, numVoterChains)
		if !ok {
			continue
		}

		candidate := &block.Block{
			Header:         header,
			Content:        contents[idx],
			SortitionProof: tree.Proof(int(idx)),
		}

		status := m.chain.Insert(candidate)
		if status != chain.StatusValid {
			m.log.Warn("miner: mined block %s failed to insert (status %d)", candidate.Hash(), status)
			continue
		}

		m.log.Info("miner: mined %s at sortition index %d", candidate.Hash(), idx)
		if m.transport != nil {
			if err := m.transport.Broadcast(net.NewBlockHashes([]crypto.H256{candidate.Hash()})); err != nil {
				m.log.Error("miner: failed to broadcast mined block %s: %v", candidate.Hash(), fmt.Errorf("%v: %w", err, perrors.ErrTransportError))
			}
		}
		return true
	}
}

// assembleContents builds the proposer candidate plus one voter
// candidate per voter chain, in sortition index order: index 0 is
// always the proposer, index k (1 <= k <= numVoterChains) is voter
// chain k.
func (m *Miner) assembleContents(txs []*utxo.SignedTransaction, numVoterChains uint32) []block.Content {
	contents := make([]block.Content, 0, numVoterChains+1)

	contents = append(contents, block.Content{
		Kind: block.KindProposer,
		Proposer: &block.ProposerContent{
			ParentHash:   m.chain.GetProposerTip(),
			Transactions: txs,
			ProposerRefs: m.chain.GetUnrefProposers(),
		},
	})

	for chainNum := uint32(1); chainNum <= numVoterChains; chainNum++ {
		contents = append(contents, block.Content{
			Kind: block.KindVoter,
			Voter: &block.VoterContent{
				Votes:      m.chain.GetVotes(chainNum),
				ParentHash: m.chain.GetVoterTip(chainNum),
				ChainNum:   chainNum,
			},
		})
	}

	return contents
}

func (m *Miner) sleep(lambda time.Duration) (cancelled bool) {
	if lambda <= 0 {
		return false
	}
	select {
	case <-m.ctx.Done():
		return true
	case <-time.After(lambda):
		return false
	}
}

func randomNonce() uint32 {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

func nowMicros() uint64 {
	return uint64(time.Now().UnixMicro())
}
