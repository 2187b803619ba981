package miner

import (
	"testing"
	"time"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/mempool"
)

func newTestMiner(t *testing.T) *Miner {
	t.Helper()
	c := chain.New(chain.DefaultConfig())
	pool := mempool.New(nil)
	m := New(&Config{Chain: c, Mempool: pool, TransactionsPerBlock: 5})
	return m
}

func TestMinerStartsPausedAndReportsRunningAfterStart(t *testing.T) {
	m := newTestMiner(t)
	defer m.Exit()

	if m.IsRunning() {
		t.Fatal("expected miner to start paused")
	}

	m.Run()
	m.Start(50*time.Millisecond, 7)

	deadline := time.Now().Add(time.Second)
	for !m.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("miner never transitioned to running after Start")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMinerExitStopsControlLoop(t *testing.T) {
	m := newTestMiner(t)
	m.Run()
	m.Start(time.Millisecond, 1)

	deadline := time.Now().Add(time.Second)
	for !m.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("miner never started running")
		}
		time.Sleep(time.Millisecond)
	}

	m.Exit()

	deadline = time.Now().Add(time.Second)
	for m.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("miner still running after Exit")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAssembleContentsOrdersProposerFirstThenOneVoterPerChain(t *testing.T) {
	m := newTestMiner(t)
	defer m.Exit()

	const numVoterChains = 3
	contents := m.assembleContents(nil, numVoterChains)

	if len(contents) != numVoterChains+1 {
		t.Fatalf("len(contents) = %d, want %d", len(contents), numVoterChains+1)
	}

	if contents[0].Kind != block.KindProposer {
		t.Fatalf("contents[0].Kind = %v, want KindProposer", contents[0].Kind)
	}
	if contents[0].Proposer == nil {
		t.Fatal("contents[0].Proposer is nil")
	}

	for chainNum := uint32(1); chainNum <= numVoterChains; chainNum++ {
		c := contents[chainNum]
		if c.Kind != block.KindVoter {
			t.Fatalf("contents[%d].Kind = %v, want KindVoter", chainNum, c.Kind)
		}
		if c.Voter == nil {
			t.Fatalf("contents[%d].Voter is nil", chainNum)
		}
		if c.Voter.ChainNum != chainNum {
			t.Fatalf("contents[%d].Voter.ChainNum = %d, want %d", chainNum, c.Voter.ChainNum, chainNum)
		}
	}
}

func TestSleepReturnsImmediatelyForNonPositiveLambda(t *testing.T) {
	m := newTestMiner(t)
	defer m.Exit()

	start := time.Now()
	cancelled := m.sleep(0)
	if cancelled {
		t.Fatal("sleep(0) should not report cancelled")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("sleep(0) should return immediately")
	}
}

func TestSleepReportsCancelledAfterExit(t *testing.T) {
	m := newTestMiner(t)
	m.Exit()

	if cancelled := m.sleep(time.Hour); !cancelled {
		t.Fatal("sleep should report cancelled once the miner has exited")
	}
}
