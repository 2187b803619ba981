package block

import (
	"testing"

	"github.com/prism-labs/prism/pkg/crypto"
)

func TestGenesisProposerFixedFields(t *testing.T) {
	g := GenesisProposer()
	if g.Header.Nonce != 0 || g.Header.Timestamp != 0 || g.Header.MinerID != 0 {
		t.Fatal("genesis proposer header fields must be zero")
	}
	if g.Header.MerkleRoot != crypto.ZeroH256 {
		t.Fatal("genesis proposer merkle root must be zero")
	}
	if g.Header.Difficulty != GenesisDifficulty {
		t.Fatal("genesis proposer difficulty must be all-0xFF")
	}
	if g.Content.Kind != KindProposer {
		t.Fatal("expected proposer content kind")
	}
	if g.Content.Proposer.ParentHash != crypto.ZeroH256 {
		t.Fatal("genesis proposer parent hash must be zero")
	}
}

func TestGenesisVoterChainNumPropagates(t *testing.T) {
	g := GenesisVoter(7)
	if g.Content.Kind != KindVoter {
		t.Fatal("expected voter content kind")
	}
	if g.Content.Voter.ChainNum != 7 {
		t.Fatalf("chain num = %d, want 7", g.Content.Voter.ChainNum)
	}
	if g.Content.ChainNum() != 7 {
		t.Fatal("Content.ChainNum() must dispatch to voter chain num")
	}
}

func TestHeaderHashIsDeterministic(t *testing.T) {
	h := Header{Nonce: 42, Difficulty: GenesisDifficulty, Timestamp: 123456, MerkleRoot: crypto.ZeroH256, MinerID: 3}
	a := h.Hash()
	b := h.Hash()
	if a != b {
		t.Fatal("hashing the same header twice must be deterministic")
	}
}

func TestHeaderHashChangesWithNonce(t *testing.T) {
	h1 := Header{Nonce: 1, Difficulty: GenesisDifficulty, MerkleRoot: crypto.ZeroH256}
	h2 := h1
	h2.Nonce = 2
	if h1.Hash() == h2.Hash() {
		t.Fatal("changing the nonce must change the header hash")
	}
}

func TestProposerContentHashChangesWithParent(t *testing.T) {
	c1 := &ProposerContent{ParentHash: crypto.ZeroH256}
	c2 := &ProposerContent{ParentHash: crypto.Sha256([]byte("other parent"))}
	if c1.Hash() == c2.Hash() {
		t.Fatal("changing parent_hash must change proposer content hash")
	}
}

func TestVoterContentHashIncludesChainNum(t *testing.T) {
	c1 := &VoterContent{ChainNum: 1, ParentHash: crypto.ZeroH256}
	c2 := &VoterContent{ChainNum: 2, ParentHash: crypto.ZeroH256}
	if c1.Hash() == c2.Hash() {
		t.Fatal("changing chain_num must change voter content hash")
	}
}

func TestContentHashDispatch(t *testing.T) {
	pc := &ProposerContent{ParentHash: crypto.ZeroH256}
	content := Content{Kind: KindProposer, Proposer: pc}
	if content.Hash() != pc.Hash() {
		t.Fatal("Content.Hash() must dispatch to the populated proposer variant")
	}
}
