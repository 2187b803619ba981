package storage

import (
	"testing"

	"github.com/prism-labs/prism/pkg/block"
)

func TestStoreAndGetBlockRoundTrips(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g := block.GenesisProposer()
	if err := s.StoreBlock(g); err != nil {
		t.Fatalf("StoreBlock: %v", err)
	}
	got, err := s.GetBlock(g.Hash())
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if got.Hash() != g.Hash() {
		t.Fatal("round-tripped block has a different hash")
	}
}

func TestGetBlockMissingReturnsError(t *testing.T) {
	s, _ := New(DefaultConfig())
	if _, err := s.GetBlock(block.GenesisProposer().Hash()); err == nil {
		t.Fatal("expected an error for a block never stored")
	}
}

func TestChainStateDefaultsWhenUnset(t *testing.T) {
	s, _ := New(DefaultConfig())
	state, err := s.GetChainState()
	if err != nil {
		t.Fatalf("GetChainState: %v", err)
	}
	if state == nil {
		t.Fatal("expected a non-nil default chain state")
	}
}
