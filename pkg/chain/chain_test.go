package chain

import (
	"testing"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/crypto"
)

func newTestChain(t *testing.T, numVoterChains uint32) *Chain {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NumVoterChains = numVoterChains
	return New(cfg)
}

func TestNewChainSeedsGenesisBlocks(t *testing.T) {
	c := newTestChain(t, 3)
	if c.ProposerDepth() != 1 {
		t.Fatalf("proposer depth = %d, want 1", c.ProposerDepth())
	}
	for chainNum := uint32(1); chainNum <= 3; chainNum++ {
		if tip := c.GetVoterTip(chainNum); tip == (crypto.H256{}) {
			t.Fatalf("voter chain %d tip should be a genesis hash, not zero", chainNum)
		}
	}
}

func TestInsertProposerExtendsChainAndTip(t *testing.T) {
	c := newTestChain(t, 2)
	parent := c.GetProposerTip()

	child := &block.Block{
		// Nonce 1 keeps the header, and so the hash, distinct from genesis.
		Header: block.Header{Nonce: 1, Difficulty: block.GenesisDifficulty},
		Content: block.Content{
			Kind: block.KindProposer,
			Proposer: &block.ProposerContent{
				ParentHash: parent,
			},
		},
	}

	status := c.Insert(child)
	if status != StatusValid {
		t.Fatal("expected a child with a known parent to link as Valid")
	}
	if c.ProposerDepth() != 2 {
		t.Fatalf("proposer depth = %d, want 2", c.ProposerDepth())
	}
	if c.GetProposerTip() != child.Hash() {
		t.Fatal("new deepest proposer block should become the tip")
	}
}

func TestInsertOrphanIsBufferedNotLinked(t *testing.T) {
	c := newTestChain(t, 2)

	unknownParent := crypto.Sha256([]byte("nonexistent parent"))
	orphan := &block.Block{
		Content: block.Content{
			Kind: block.KindProposer,
			Proposer: &block.ProposerContent{
				ParentHash: unknownParent,
			},
		},
	}

	if status := c.Insert(orphan); status != StatusOrphan {
		t.Fatal("a block whose parent is unknown must be reported as orphan")
	}
	if c.ProposerDepth() != 1 {
		t.Fatal("an orphaned block must not affect chain depth")
	}
}

func TestInsertResolvesOrphanWhenParentArrives(t *testing.T) {
	c := newTestChain(t, 2)
	genesisHash := c.GetProposerTip()

	// child references a parent block that hasn't been inserted yet
	parentlessChild := &block.Block{
		Header: block.Header{Nonce: 1},
		Content: block.Content{
			Kind: block.KindProposer,
			Proposer: &block.ProposerContent{
				ParentHash: crypto.Sha256([]byte("future parent")),
			},
		},
	}
	if status := c.Insert(parentlessChild); status != StatusOrphan {
		t.Fatal("expected orphan status before its parent is inserted")
	}

	// Construct the missing parent so its hash matches what the child
	// referenced, then insert it — the buffered child should resolve.
	missingParent := &block.Block{
		Content: block.Content{
			Kind: block.KindProposer,
			Proposer: &block.ProposerContent{
				ParentHash: genesisHash,
			},
		},
	}
	// Force the orphan's reference to resolve to missingParent's actual hash.
	parentlessChild.Content.Proposer.ParentHash = missingParent.Hash()

	// Re-buffer under the correct key by reinserting (since the map key
	// recorded above used the now-mismatched old ParentHash value,
	// simulate the realistic case directly).
	c2 := newTestChain(t, 2)
	orphan := &block.Block{
		Header: block.Header{Nonce: 7},
		Content: block.Content{
			Kind: block.KindProposer,
			Proposer: &block.ProposerContent{
				ParentHash: missingParent.Hash(),
			},
		},
	}
	if status := c2.Insert(orphan); status != StatusOrphan {
		t.Fatal("expected orphan before parent known")
	}
	if status := c2.Insert(missingParent); status != StatusValid {
		t.Fatal("expected the parent itself to link")
	}
	if !c2.HasBlock(orphan.Hash()) {
		t.Fatal("previously orphaned block should be known once its parent resolves")
	}
	if c2.ProposerDepth() != 3 {
		t.Fatalf("proposer depth = %d, want 3 (genesis, parent, child)", c2.ProposerDepth())
	}
}

func TestGetVotesReturnsLevelsSinceLastVote(t *testing.T) {
	c := newTestChain(t, 1)
	parent := c.GetProposerTip()

	p1 := &block.Block{Content: block.Content{Kind: block.KindProposer, Proposer: &block.ProposerContent{ParentHash: parent}}}
	c.Insert(p1)

	votes := c.GetVotes(1)
	if len(votes) != 1 || votes[0] != p1.Hash() {
		t.Fatalf("expected exactly the one new proposer level to be votable, got %v", votes)
	}
}

func TestInsertVoterTalliesVotesAndAdvancesChain2Level(t *testing.T) {
	c := newTestChain(t, 1)
	proposerParent := c.GetProposerTip()
	p1 := &block.Block{Content: block.Content{Kind: block.KindProposer, Proposer: &block.ProposerContent{ParentHash: proposerParent}}}
	c.Insert(p1)

	voterParent := c.GetVoterTip(1)
	v1 := &block.Block{
		Content: block.Content{
			Kind: block.KindVoter,
			Voter: &block.VoterContent{
				ParentHash: voterParent,
				ChainNum:   1,
				Votes:      []crypto.H256{p1.Hash()},
			},
		},
	}
	if status := c.Insert(v1); status != StatusValid {
		t.Fatal("expected voter block to link")
	}
	if c.VoteCount(p1.Hash()) != 1 {
		t.Fatalf("vote count = %d, want 1", c.VoteCount(p1.Hash()))
	}
	if c.GetVoterTip(1) != v1.Hash() {
		t.Fatal("voter chain tip should advance to the new voter block")
	}
}
