package crypto

import (
	"encoding/hex"
	"testing"
)

type rawHash H256

func (r rawHash) Hash() H256 { return Sha256(r[:]) }

func mustHash(t *testing.T, s string) rawHash {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	var h H256
	copy(h[:], b)
	return rawHash(h)
}

func twoLeafFixture(t *testing.T) []rawHash {
	return []rawHash{
		mustHash(t, "0a0b0c0d0e0f0e0d0a0b0c0d0e0f0e0d0a0b0c0d0e0f0e0d0a0b0c0d0e0f0e0d"),
		mustHash(t, "0101010101010101010101010101010101010101010101010101010101010202"),
	}
}

func TestTreeRootTwoLeaves(t *testing.T) {
	tree := NewTree(twoLeafFixture(t))
	want, _ := H256FromHex("6b787718210e0b3b608814e04e61fde06d0df794319a12162f287412df3ec920")
	if tree.Root() != want {
		t.Fatalf("root = %s, want %s", tree.Root(), want)
	}
}

func TestTreeProofTwoLeaves(t *testing.T) {
	tree := NewTree(twoLeafFixture(t))
	proof := tree.Proof(0)
	if len(proof) != 1 {
		t.Fatalf("expected single-element proof, got %d", len(proof))
	}
	want, _ := H256FromHex("965b093a75a75895a351786dd7a188515173f6928a8af8c9baa4dcff268a4f0f")
	if proof[0] != want {
		t.Fatalf("proof[0] = %s, want %s", proof[0], want)
	}
}

func TestTreeVerifyTwoLeaves(t *testing.T) {
	leaves := twoLeafFixture(t)
	tree := NewTree(leaves)
	proof := tree.Proof(0)
	if !Verify(tree.Root(), leaves[0].Hash(), proof, 0, len(leaves)) {
		t.Fatal("expected proof to verify")
	}
}

func TestTreeVerifyRejectsWrongLeaf(t *testing.T) {
	leaves := twoLeafFixture(t)
	tree := NewTree(leaves)
	proof := tree.Proof(0)
	if Verify(tree.Root(), leaves[1].Hash(), proof, 0, len(leaves)) {
		t.Fatal("expected verify to fail for mismatched leaf")
	}
}

func TestTreeOddWidthDuplicatesLastLeaf(t *testing.T) {
	three := []rawHash{
		mustHash(t, "0101010101010101010101010101010101010101010101010101010101010101"),
		mustHash(t, "0202020202020202020202020202020202020202020202020202020202020202"),
		mustHash(t, "0303030303030303030303030303030303030303030303030303030303030303"),
	}
	withDup := []rawHash{three[0], three[1], three[2], three[2]}

	got := NewTree(three).Root()
	want := NewTree(withDup).Root()
	if got != want {
		t.Fatalf("odd-width tree root %s does not match explicit duplication %s", got, want)
	}
}

func TestSingleLeafTreeRootIsSelfPairHash(t *testing.T) {
	one := []rawHash{mustHash(t, "0404040404040404040404040404040404040404040404040404040404040404")}
	tree := NewTree(one)
	want := hashPair(one[0].Hash(), one[0].Hash())
	if tree.Root() != want {
		t.Fatalf("single-leaf root should be hash(leaf||leaf) after odd-width duplication, got %s want %s", tree.Root(), want)
	}
}
