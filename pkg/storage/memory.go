package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/crypto"
)

// Config configures the in-memory store. It carries no options today
// but exists so callers construct a Storage the same way regardless
// of which backend eventually backs it.
type Config struct{}

// DefaultConfig returns the default in-memory storage configuration.
func DefaultConfig() *Config { return &Config{} }

// Storage is an in-memory, process-local implementation of Interface.
// There is no on-disk persistence: a restart starts from genesis. A
// durable backend (badger, leveldb) would satisfy the same Interface
// without touching callers — see DESIGN.md for why none is wired in.
type Storage struct {
	mu     sync.RWMutex
	blocks map[crypto.H256]*block.Block
	state  *ChainState
}

// New creates an empty in-memory store.
func New(cfg *Config) (*Storage, error) {
	return &Storage{blocks: make(map[crypto.H256]*block.Block)}, nil
}

func (s *Storage) StoreBlock(b *block.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.Hash()] = b
	return nil
}

func (s *Storage) GetBlock(hash crypto.H256) (*block.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[hash]
	if !ok {
		return nil, fmt.Errorf("storage: block %s not found", hash)
	}
	return b, nil
}

func (s *Storage) StoreChainState(state *ChainState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

func (s *Storage) GetChainState() (*ChainState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return &ChainState{LastUpdate: time.Now()}, nil
	}
	return s.state, nil
}

func (s *Storage) Close() error { return nil }
