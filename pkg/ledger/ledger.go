// Package ledger implements the Prism confirmation policy: choosing a
// k-deep-confirmed leader proposer block at each level, linearizing
// its and its references' transactions into a single sequence, and
// applying that sequence to the UTXO state.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/metrics"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/utxo"
)

// Config holds the ledger manager's tunable parameters.
type Config struct {
	// VoterDepthK is the number of blocks a vote must be buried under
	// on its voter chain before it counts toward leader confirmation.
	VoterDepthK uint32
	// PollInterval is how often the manager re-scans for newly
	// confirmable levels.
	PollInterval time.Duration
	Logger       *logger.Logger
	// Metrics is optional; when set, every applied transaction
	// increments its confirmed-transactions counter.
	Metrics *metrics.Registry
}

// DefaultConfig returns the ledger manager configuration used in
// production: 2-deep vote confirmation, a 1-second poll interval.
func DefaultConfig() *Config {
	return &Config{
		VoterDepthK:  2,
		PollInterval: time.Second,
		Logger:       logger.NewLogger(logger.DefaultConfig()),
	}
}

// state is the manager's running progress through the proposer chain.
type state struct {
	lastLevelProcessed uint32
	leaderSequence     []crypto.H256
	proposerProcessed  map[crypto.H256]struct{}
	txConfirmed        map[crypto.H256]struct{}
	txCount            int
}

// Manager periodically confirms leader blocks and folds their
// transactions into the UTXO state.
type Manager struct {
	chain       *chain.Chain
	utxo        *utxo.State
	voterDepthK uint32
	log         *logger.Logger
	interval    time.Duration
	metrics     *metrics.Registry

	state state
}

// New creates a ledger manager bound to c and u.
func New(c *chain.Chain, u *utxo.State, cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Manager{
		chain:       c,
		utxo:        u,
		voterDepthK: cfg.VoterDepthK,
		log:         cfg.Logger,
		interval:    cfg.PollInterval,
		metrics:     cfg.Metrics,
		state: state{
			lastLevelProcessed: 1,
			proposerProcessed:  make(map[crypto.H256]struct{}),
			txConfirmed:        make(map[crypto.H256]struct{}),
		},
	}
}

// Run drives the confirm-leader / linearize-transactions / apply loop
// until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Tick runs one pass of the three-step confirmation cycle. Exposed
// directly so callers such as tests can drive it without waiting on
// the poll interval.
func (m *Manager) Tick() {
	leaders := m.confirmedLeaderSequence()
	txs := m.transactionSequence(leaders)
	m.confirmTransactions(txs)
}

// confirmedLeaderSequence advances lastLevelProcessed by confirming
// one leader at a time; it stops at the first level it cannot yet
// confirm, since every later level chains off this one's parent.
func (m *Manager) confirmedLeaderSequence() []crypto.H256 {
	var leaders []crypto.H256
	levelEnd := m.chain.ProposerDepth() + 1

	for level := m.state.lastLevelProcessed + 1; level < levelEnd; level++ {
		leader, ok := m.confirmLeader(level)
		if !ok {
			m.log.Info("ledger: unable to confirm a leader at level %d yet", level)
			break
		}
		leaders = append(leaders, leader)
		m.state.leaderSequence = append(m.state.leaderSequence, leader)
		m.state.lastLevelProcessed = level
	}
	return leaders
}

// confirmLeader applies the k-deep vote confirmation policy: a
// proposer block at level is confirmed once a strict majority of
// voter chains have cast a vote for it that is buried at least
// VoterDepthK blocks deep on their own chain.
func (m *Manager) confirmLeader(level uint32) (crypto.H256, bool) {
	candidates := m.chain.ProposersAtLevel(level)
	numVoterChains := m.chain.NumVoterChains()

	for _, candidate := range candidates {
		voters := m.chain.VoterInfoFor(candidate)
		if uint32(len(voters)) < numVoterChains/2 {
			continue
		}

		var confirmedVotes uint32
		for _, v := range voters {
			voterBlockLevel, ok := m.chain.VoterBlockLevel(v.ChainNum, v.VoterHash)
			if !ok {
				continue
			}
			voterChainDepth := m.chain.VoterChainDepth(v.ChainNum)
			if voterChainDepth-voterBlockLevel >= m.voterDepthK {
				confirmedVotes++
			}
		}
		if confirmedVotes > numVoterChains/2 {
			return candidate, true
		}
	}
	return crypto.H256{}, false
}

// transactionSequence linearizes the transactions of each newly
// confirmed leader, visiting its parent and any proposer references
// first (one hop only — not recursively through their own
// references), skipping any proposer block already processed.
func (m *Manager) transactionSequence(leaders []crypto.H256) []*utxo.SignedTransaction {
	var sequence []*utxo.SignedTransaction

	for _, leader := range leaders {
		content, ok := m.chain.ProposerContentAt(leader)
		if !ok {
			continue
		}

		var toProcess []crypto.H256
		if _, seen := m.state.proposerProcessed[content.ParentHash]; !seen {
			toProcess = append(toProcess, content.ParentHash)
		}
		for _, ref := range content.ProposerRefs {
			if _, seen := m.state.proposerProcessed[ref]; !seen {
				toProcess = append(toProcess, ref)
			}
		}

		for _, ref := range toProcess {
			if refContent, ok := m.chain.ProposerContentAt(ref); ok {
				sequence = append(sequence, refContent.Transactions...)
			}
			m.state.proposerProcessed[ref] = struct{}{}
		}

		sequence = append(sequence, content.Transactions...)
		m.state.proposerProcessed[leader] = struct{}{}
	}
	return sequence
}

// confirmTransactions validates and applies each transaction in
// sequence to the UTXO state, skipping any already confirmed.
func (m *Manager) confirmTransactions(sequence []*utxo.SignedTransaction) {
	m.state.txCount += len(sequence)
	for _, tx := range sequence {
		hash := tx.Hash()
		if _, done := m.state.txConfirmed[hash]; done {
			m.log.Info("ledger: transaction %s already confirmed, skipping", hash)
			continue
		}
		if m.utxo.IsTxValid(tx) {
			m.utxo.UpdateState(tx)
			m.state.txConfirmed[hash] = struct{}{}
			m.log.Info("ledger: confirmed transaction %s", hash)
			if m.metrics != nil {
				m.metrics.TransactionsConfirmed.Inc()
			}
		} else {
			err := fmt.Errorf("ledger: transaction %s: %w", hash, perrors.ErrInvalidSignatureOrInputs)
			m.log.Warn("ledger: dropping transaction from confirmation sequence: %v", err)
		}
	}
}

// ConfirmedCount returns how many transactions have been confirmed so far.
func (m *Manager) ConfirmedCount() int {
	return len(m.state.txConfirmed)
}
