// Package validation holds the stateless proof-of-work and Merkle
// inclusion checks applied to every freshly received or mined block.
package validation

import (
	"fmt"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/sortition"
)

// CheckPoWSortitionID verifies that a block's hash satisfies the
// proof-of-work target and that the sortition id it resolves to
// matches the chain the block's content claims to belong to. A
// non-nil return always wraps perrors.ErrProtocolViolation.
func CheckPoWSortitionID(b *block.Block, numVoterChains uint32) error {
	id, ok := sortition.SortitionID(b.Hash(), b.Header.Difficulty, numVoterChains)
	if !ok {
		return fmt.Errorf("validation: block %s does not satisfy the pow target: %w", b.Hash(), perrors.ErrProtocolViolation)
	}
	var want uint32
	if b.Content.Kind == block.KindVoter {
		want = b.Content.Voter.ChainNum
	} else {
		want = sortition.ProposerIndex
	}
	if id != want {
		return fmt.Errorf("validation: block %s resolves to sortition id %d, content claims %d: %w", b.Hash(), id, want, perrors.ErrProtocolViolation)
	}
	return nil
}

// CheckSortitionProof verifies the block's Merkle inclusion proof ties
// its content hash to the header's merkle_root at the sortition
// index, over a tree of width numVoterChains+1 (one leaf per chain).
// A non-nil return always wraps perrors.ErrProtocolViolation.
func CheckSortitionProof(b *block.Block, numVoterChains uint32) error {
	id, ok := sortition.SortitionID(b.Hash(), b.Header.Difficulty, numVoterChains)
	if !ok {
		return fmt.Errorf("validation: block %s does not satisfy the pow target: %w", b.Hash(), perrors.ErrProtocolViolation)
	}
	leafSize := int(numVoterChains + sortition.FirstVoterIndex)
	if !crypto.Verify(b.Header.MerkleRoot, b.Content.Hash(), b.SortitionProof, int(id), leafSize) {
		return fmt.Errorf("validation: block %s sortition proof does not verify against merkle root %s: %w", b.Hash(), b.Header.MerkleRoot, perrors.ErrProtocolViolation)
	}
	return nil
}
