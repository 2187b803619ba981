// Package storage defines the persistence seam for blocks and chain
// state, and provides the in-memory implementation used by every
// build of this module.
package storage

import (
	"time"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/crypto"
)

// Interface is the common contract every storage backend satisfies.
type Interface interface {
	// StoreBlock persists b, addressable later by its own hash.
	StoreBlock(b *block.Block) error
	// GetBlock retrieves a previously stored block by hash.
	GetBlock(hash crypto.H256) (*block.Block, error)

	StoreChainState(state *ChainState) error
	GetChainState() (*ChainState, error)

	Close() error
}

// ChainState is the minimal snapshot persisted alongside blocks, used
// to resume a node without replaying every block from genesis.
type ChainState struct {
	ProposerTip crypto.H256
	VoterTips   []crypto.H256
	LastUpdate  time.Time
}
