package sortition

import (
	"testing"

	"github.com/prism-labs/prism/pkg/crypto"
)

func TestDifficultyScalesWithVoterChains(t *testing.T) {
	d0 := Difficulty(0)
	d2 := Difficulty(2)
	if !d0.Less(d2) {
		t.Fatal("difficulty must grow (easier target) as voter chains increase")
	}
}

func TestSortitionIDRejectsHashAboveDifficulty(t *testing.T) {
	difficulty := Difficulty(3)
	// all-0xFF is the weakest possible hash, guaranteed >= any real difficulty.
	var hash crypto.H256
	for i := range hash {
		hash[i] = 0xFF
	}
	if _, ok := SortitionID(hash, difficulty, 3); ok {
		t.Fatal("a hash at the maximum value must not satisfy any difficulty target")
	}
}

func TestSortitionIDAssignsZeroHashToProposer(t *testing.T) {
	difficulty := Difficulty(3)
	var hash crypto.H256 // all-zero hash is always inside the proposer's share
	id, ok := SortitionID(hash, difficulty, 3)
	if !ok {
		t.Fatal("zero hash must satisfy any nonzero difficulty")
	}
	if id != ProposerIndex {
		t.Fatalf("sortition id = %d, want ProposerIndex", id)
	}
}

func TestSortitionIDDistributesAcrossVoterChains(t *testing.T) {
	difficulty := Difficulty(4)
	seen := map[uint32]bool{}
	for i := 0; i < 64; i++ {
		var hash crypto.H256
		hash[1] = byte(i) // sweep the second byte across the region below the difficulty target
		hash[31] = byte(i * 7)
		if id, ok := SortitionID(hash, difficulty, 4); ok {
			seen[id] = true
		}
	}
	if len(seen) < 2 {
		t.Fatalf("expected sortition to spread hashes across multiple chains, saw only %v", seen)
	}
}
