package ledger

import (
	"testing"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/keyring"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/utxo"
)

func twoChainSetup(t *testing.T) (*chain.Chain, *utxo.State, [6]crypto.H160) {
	t.Helper()
	cfg := chain.DefaultConfig()
	cfg.NumVoterChains = 2
	c := chain.New(cfg)

	k := keyring.New()
	accts, err := keyring.LoadICOKeys(k)
	if err != nil {
		t.Fatalf("LoadICOKeys: %v", err)
	}
	var addrs [6]crypto.H160
	for i, a := range accts {
		addrs[i] = a.Address
	}
	u := utxo.NewState()
	u.PerformICO(addrs)
	return c, u, addrs
}

func TestConfirmLeaderRequiresMajorityOfDeepVotes(t *testing.T) {
	c, u, _ := twoChainSetup(t)
	m := New(c, u, &Config{VoterDepthK: 0, Logger: logger.NewLogger(logger.DefaultConfig())})

	proposerParent := c.GetProposerTip()
	p1 := &block.Block{Content: block.Content{Kind: block.KindProposer, Proposer: &block.ProposerContent{ParentHash: proposerParent}}}
	if status := c.Insert(p1); status != chain.StatusValid {
		t.Fatal("expected proposer to link")
	}

	// Only one of two voter chains votes for p1 — not a majority (need > 1).
	v1Parent := c.GetVoterTip(1)
	v1 := &block.Block{Content: block.Content{Kind: block.KindVoter, Voter: &block.VoterContent{
		ParentHash: v1Parent, ChainNum: 1, Votes: []crypto.H256{p1.Hash()},
	}}}
	c.Insert(v1)

	m.Tick()
	if m.state.lastLevelProcessed != 1 {
		t.Fatalf("expected level 2 unconfirmed (only one vote), lastLevelProcessed=%d", m.state.lastLevelProcessed)
	}

	v2Parent := c.GetVoterTip(2)
	v2 := &block.Block{Content: block.Content{Kind: block.KindVoter, Voter: &block.VoterContent{
		ParentHash: v2Parent, ChainNum: 2, Votes: []crypto.H256{p1.Hash()},
	}}}
	c.Insert(v2)

	m.Tick()
	if m.state.lastLevelProcessed != 2 {
		t.Fatalf("expected level 2 confirmed once both chains voted, lastLevelProcessed=%d", m.state.lastLevelProcessed)
	}
	if len(m.state.leaderSequence) != 1 || m.state.leaderSequence[0] != p1.Hash() {
		t.Fatal("expected p1 to be recorded as the confirmed leader")
	}
}

func TestConfirmTransactionsAppliesToUTXOState(t *testing.T) {
	c, u, addrs := twoChainSetup(t)
	m := New(c, u, &Config{VoterDepthK: 0, Logger: logger.NewLogger(logger.DefaultConfig())})

	txHash := func(i, j byte) crypto.H256 {
		h, _ := crypto.H256FromHex("6b787718210e0b3b608814e04e61fde06d0df794319a12162f287412df3ec920")
		h[0] = i
		h[1] = j
		return h
	}
	k := keyring.New()
	accts, _ := keyring.LoadICOKeys(k)

	tx := utxo.Transaction{
		Inputs:  []utxo.Input{{TxHash: txHash(0, 0), Index: 0}},
		Outputs: []utxo.Output{{Recipient: addrs[1], Value: 100}},
	}
	sig := utxo.Sign(tx, accts[0].PrivateKey)
	signed := &utxo.SignedTransaction{Tx: tx, Signature: sig, PublicKey: accts[0].PublicKey}

	proposerParent := c.GetProposerTip()
	p1 := &block.Block{Content: block.Content{Kind: block.KindProposer, Proposer: &block.ProposerContent{
		ParentHash: proposerParent, Transactions: []*utxo.SignedTransaction{signed},
	}}}
	c.Insert(p1)

	for chainNum := uint32(1); chainNum <= 2; chainNum++ {
		parent := c.GetVoterTip(chainNum)
		v := &block.Block{Content: block.Content{Kind: block.KindVoter, Voter: &block.VoterContent{
			ParentHash: parent, ChainNum: chainNum, Votes: []crypto.H256{p1.Hash()},
		}}}
		c.Insert(v)
	}

	m.Tick()

	if m.ConfirmedCount() != 1 {
		t.Fatalf("expected exactly one confirmed transaction, got %d", m.ConfirmedCount())
	}
	if bal := u.Balance(addrs[0]); bal != 400 {
		t.Fatalf("sender balance = %d, want 400 after spending one 100-value ICO output", bal)
	}
}
