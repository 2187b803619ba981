// Package chain implements the Prism data structure: one proposer
// chain plus N voter chains, their orphan buffering, vote tallying,
// and the accessors the miner and ledger manager consume.
package chain

import (
	"fmt"
	"sync"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/mempool"
	"github.com/prism-labs/prism/pkg/metrics"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/storage"
)

// InsertStatus reports the outcome of Insert.
type InsertStatus int

const (
	// StatusOrphan means the block was buffered pending a missing
	// parent, proposer ref, or vote target.
	StatusOrphan InsertStatus = iota
	// StatusValid means the block was fully linked into its chain.
	StatusValid
)

// Metablock pairs a block with its depth on its own chain.
type Metablock struct {
	Block *block.Block
	Level uint32
}

// Config holds the chain's tunable parameters.
type Config struct {
	NumVoterChains uint32
	Storage        storage.Interface
	Mempool        *mempool.Mempool
	Logger         *logger.Logger
	// Metrics is optional; when nil, no counters are recorded.
	Metrics *metrics.Registry
}

// DefaultConfig returns a chain configuration for a single-node test
// setup: 3 voter chains, in-memory storage, a fresh mempool.
func DefaultConfig() *Config {
	s, _ := storage.New(storage.DefaultConfig())
	return &Config{
		NumVoterChains: 3,
		Storage:        s,
		Mempool:        mempool.New(nil),
		Logger:         logger.NewLogger(logger.DefaultConfig()),
	}
}

// Chain is the in-memory Prism ledger topology: a proposer chain, N
// voter chains, and the cross-chain bookkeeping (unreferenced
// proposers, per-level proposer indices, per-proposer vote counts,
// per-chain last-voted level) that the miner and ledger manager read.
type Chain struct {
	mu sync.RWMutex

	log            *logger.Logger
	mempool        *mempool.Mempool
	storage        storage.Interface
	metrics        *metrics.Registry
	numVoterChains uint32

	proposerChain map[crypto.H256]*Metablock
	proposerTip   crypto.H256
	proposerDepth uint32

	voterChains map[uint32]map[crypto.H256]*Metablock // chain_num -> hash -> metablock
	voterTips   map[uint32]crypto.H256
	voterDepths map[uint32]uint32

	unrefProposers    []crypto.H256
	level2Proposer    map[uint32]crypto.H256
	level2AllProposer map[uint32][]crypto.H256
	proposer2VoteCount map[crypto.H256]uint32
	proposer2VoterInfo map[crypto.H256][]VoterInfo
	chain2Level        map[uint32]uint32

	orphanBuffer map[crypto.H256][]*block.Block
	blocksdb     map[crypto.H256]*block.Block

	newProposer bool
}

// VoterInfo records which voter chain, and which block on it, cast a
// vote for a given proposer.
type VoterInfo struct {
	ChainNum uint32
	VoterHash crypto.H256
}

// New builds a fresh chain seeded with the proposer and per-voter-chain
// genesis blocks.
func New(cfg *Config) *Chain {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c := &Chain{
		log:                cfg.Logger,
		mempool:            cfg.Mempool,
		storage:            cfg.Storage,
		metrics:            cfg.Metrics,
		numVoterChains:     cfg.NumVoterChains,
		proposerChain:      make(map[crypto.H256]*Metablock),
		voterChains:        make(map[uint32]map[crypto.H256]*Metablock),
		voterTips:          make(map[uint32]crypto.H256),
		voterDepths:        make(map[uint32]uint32),
		level2Proposer:     make(map[uint32]crypto.H256),
		level2AllProposer:  make(map[uint32][]crypto.H256),
		proposer2VoteCount: make(map[crypto.H256]uint32),
		proposer2VoterInfo: make(map[crypto.H256][]VoterInfo),
		chain2Level:        make(map[uint32]uint32),
		orphanBuffer:       make(map[crypto.H256][]*block.Block),
		blocksdb:           make(map[crypto.H256]*block.Block),
		newProposer:        true,
	}

	proposer := block.GenesisProposer()
	proposerHash := proposer.Hash()
	c.blocksdb[proposerHash] = proposer
	c.proposerChain[proposerHash] = &Metablock{Block: proposer, Level: 1}
	c.proposerTip = proposerHash
	c.proposerDepth = 1
	c.unrefProposers = append(c.unrefProposers, proposerHash)
	c.level2Proposer[1] = proposerHash
	c.level2AllProposer[1] = []crypto.H256{proposerHash}
	c.proposer2VoteCount[proposerHash] = 0
	c.proposer2VoterInfo[proposerHash] = nil

	for chainNum := uint32(1); chainNum <= cfg.NumVoterChains; chainNum++ {
		voter := block.GenesisVoter(chainNum)
		voterHash := voter.Hash()
		c.blocksdb[voterHash] = voter
		c.voterChains[chainNum] = map[crypto.H256]*Metablock{voterHash: {Block: voter, Level: 1}}
		c.voterTips[chainNum] = voterHash
		c.voterDepths[chainNum] = 1
		c.chain2Level[chainNum] = 0
	}

	return c
}

func (c *Chain) NumVoterChains() uint32 { return c.numVoterChains }

// GetProposerTip returns the hash of the deepest proposer block.
func (c *Chain) GetProposerTip() crypto.H256 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proposerTip
}

// GetVoterTip returns the hash of the deepest block on voter chain chainNum.
func (c *Chain) GetVoterTip(chainNum uint32) crypto.H256 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.voterTips[chainNum]
}

// GetUnrefProposers returns the current set of unreferenced proposer hashes.
func (c *Chain) GetUnrefProposers() []crypto.H256 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]crypto.H256, len(c.unrefProposers))
	copy(out, c.unrefProposers)
	return out
}

// GetVotes returns, for chainNum, the proposer hashes at every level
// between its last-voted level (exclusive) and the current proposer
// tip's level (inclusive) — the votes a new block on that chain
// should cast.
func (c *Chain) GetVotes(chainNum uint32) []crypto.H256 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lastVoted := c.chain2Level[chainNum]
	lastProposerLevel := c.proposerChain[c.proposerTip].Level

	var votes []crypto.H256
	for level := lastVoted + 1; level <= lastProposerLevel; level++ {
		if h, ok := c.level2Proposer[level]; ok {
			votes = append(votes, h)
		}
	}
	return votes
}

// HasBlock reports whether hash is known locally (valid or orphaned).
func (c *Chain) HasBlock(hash crypto.H256) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.blocksdb[hash]
	return ok
}

// GetBlock returns the block for hash, if known.
func (c *Chain) GetBlock(hash crypto.H256) (*block.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.blocksdb[hash]
	return b, ok
}

// HasNewProposer reports and clears whether a proposer block has been
// linked in since the last call — the miner's signal to refresh its
// in-progress superblock assembly.
func (c *Chain) HasNewProposer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.newProposer
	c.newProposer = false
	return v
}

// VoteCount returns the number of votes recorded for proposer hash.
func (c *Chain) VoteCount(hash crypto.H256) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proposer2VoteCount[hash]
}

// VoterInfoFor returns every (chain, voter block) pair that has cast a
// vote for the given proposer hash.
func (c *Chain) VoterInfoFor(proposerHash crypto.H256) []VoterInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]VoterInfo, len(c.proposer2VoterInfo[proposerHash]))
	copy(out, c.proposer2VoterInfo[proposerHash])
	return out
}

// VoterBlockLevel returns the depth of a linked block on voter chain chainNum.
func (c *Chain) VoterBlockLevel(chainNum uint32, hash crypto.H256) (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mb, ok := c.voterChains[chainNum][hash]
	if !ok {
		return 0, false
	}
	return mb.Level, true
}

// VoterChainDepth returns the deepest linked level of voter chain chainNum.
func (c *Chain) VoterChainDepth(chainNum uint32) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.voterDepths[chainNum]
}

// ProposerContentAt returns the proposer content of a linked proposer
// block, used to walk a leader's transactions and references.
func (c *Chain) ProposerContentAt(hash crypto.H256) (*block.ProposerContent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mb, ok := c.proposerChain[hash]
	if !ok || mb.Block.Content.Kind != block.KindProposer {
		return nil, false
	}
	return mb.Block.Content.Proposer, true
}

// ProposerLevel returns the depth of a linked proposer block.
func (c *Chain) ProposerLevel(hash crypto.H256) (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mb, ok := c.proposerChain[hash]
	if !ok {
		return 0, false
	}
	return mb.Level, true
}

// ProposersAtLevel returns every proposer block linked at level.
func (c *Chain) ProposersAtLevel(level uint32) []crypto.H256 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]crypto.H256, len(c.level2AllProposer[level]))
	copy(out, c.level2AllProposer[level])
	return out
}

// ProposerDepth returns the deepest linked proposer level.
func (c *Chain) ProposerDepth() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proposerDepth
}

func removeHash(list []crypto.H256, target crypto.H256) []crypto.H256 {
	for i, h := range list {
		if h == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Insert links b into its chain if every reference it carries is
// already known, buffering it as an orphan otherwise. Once a block is
// linked, any orphans waiting on it are processed too — iteratively
// via a work queue, not recursively, since a long orphan chain (e.g.
// a peer catching up after being offline) would otherwise grow the
// call stack unboundedly.
func (c *Chain) Insert(b *block.Block) InsertStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := []*block.Block{b}
	var finalStatus InsertStatus = StatusOrphan
	first := true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		status := c.insertOne(cur)
		if first {
			finalStatus = status
			first = false
		}
		if status != StatusValid {
			continue
		}

		curHash := cur.Hash()
		if waiting, ok := c.orphanBuffer[curHash]; ok {
			delete(c.orphanBuffer, curHash)
			queue = append(queue, waiting...)
		}
	}

	return finalStatus
}

// insertOne performs a single, non-recursive link attempt: buffer as
// an orphan if references are missing, otherwise thread the block
// into its chain and update every derived index.
func (c *Chain) insertOne(b *block.Block) InsertStatus {
	blockHash := b.Hash()
	c.blocksdb[blockHash] = b
	if c.storage != nil {
		if err := c.storage.StoreBlock(b); err != nil {
			c.log.Error("chain: failed to persist block %s: %v", blockHash, err)
		}
	}

	if missing, ok := c.missingReference(b); ok {
		c.orphanBuffer[missing] = append(c.orphanBuffer[missing], b)
		err := fmt.Errorf("chain: block %s references unlinked %s: %w", blockHash, missing, perrors.ErrMissingReference)
		c.log.Info("chain: buffering block %s as orphan: %v", blockHash, err)
		if c.metrics != nil {
			c.metrics.OrphansBuffered.Inc()
		}
		return StatusOrphan
	}

	switch b.Content.Kind {
	case block.KindProposer:
		c.insertProposer(b, blockHash)
	case block.KindVoter:
		c.insertVoter(b, blockHash)
	}
	if c.metrics != nil {
		c.metrics.BlocksInserted.Inc()
	}
	return StatusValid
}

// missingReference returns the first reference b depends on that is
// not yet linked locally.
func (c *Chain) missingReference(b *block.Block) (crypto.H256, bool) {
	switch b.Content.Kind {
	case block.KindProposer:
		content := b.Content.Proposer
		if _, ok := c.proposerChain[content.ParentHash]; !ok {
			return content.ParentHash, true
		}
		for _, ref := range content.ProposerRefs {
			if _, ok := c.proposerChain[ref]; !ok {
				return ref, true
			}
		}
	case block.KindVoter:
		content := b.Content.Voter
		if _, ok := c.voterChains[content.ChainNum][content.ParentHash]; !ok {
			return content.ParentHash, true
		}
		for _, vote := range content.Votes {
			if _, ok := c.proposerChain[vote]; !ok {
				return vote, true
			}
		}
	}
	return crypto.H256{}, false
}

func (c *Chain) insertProposer(b *block.Block, blockHash crypto.H256) {
	content := b.Content.Proposer

	c.unrefProposers = removeHash(c.unrefProposers, content.ParentHash)
	for _, ref := range content.ProposerRefs {
		c.unrefProposers = removeHash(c.unrefProposers, ref)
	}

	parentLevel := c.proposerChain[content.ParentHash].Level
	level := parentLevel + 1
	c.proposerChain[blockHash] = &Metablock{Block: b, Level: level}
	c.newProposer = true
	c.log.Info("chain: added proposer %s at level %d", blockHash, level)

	if level > c.proposerDepth {
		c.proposerDepth = level
		c.proposerTip = blockHash
	}

	for _, tx := range content.Transactions {
		c.mempool.Delete(tx.Hash())
	}

	c.unrefProposers = append(c.unrefProposers, blockHash)

	if _, ok := c.level2Proposer[level]; !ok {
		c.level2Proposer[level] = blockHash
	}
	c.level2AllProposer[level] = append(c.level2AllProposer[level], blockHash)
}

func (c *Chain) insertVoter(b *block.Block, blockHash crypto.H256) {
	content := b.Content.Voter
	chainNum := content.ChainNum

	maxVoteLevel := c.chain2Level[chainNum]
	voterInfo := VoterInfo{ChainNum: chainNum, VoterHash: blockHash}
	for _, vote := range content.Votes {
		c.proposer2VoteCount[vote]++
		c.proposer2VoterInfo[vote] = append(c.proposer2VoterInfo[vote], voterInfo)

		if lvl := c.proposerChain[vote].Level; lvl > maxVoteLevel {
			maxVoteLevel = lvl
		}
	}
	c.chain2Level[chainNum] = maxVoteLevel

	parentLevel := c.voterChains[chainNum][content.ParentHash].Level
	level := parentLevel + 1
	c.voterChains[chainNum][blockHash] = &Metablock{Block: b, Level: level}

	if level > c.voterDepths[chainNum] {
		c.voterDepths[chainNum] = level
		c.voterTips[chainNum] = blockHash
	}
}

func (c *Chain) String() string {
	return fmt.Sprintf("Chain{proposer_depth=%d voter_chains=%d}", c.proposerDepth, c.numVoterChains)
}
