// Package txgen implements the synthetic transaction generator used
// to exercise a running node: it cycles through the UTXO set looking
// for outputs owned by the addresses it is responsible for, and
// submits single-input, single-output spends to a random one of the 6
// fixed demo addresses.
package txgen

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/keyring"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/mempool"
	"github.com/prism-labs/prism/pkg/net"
	"github.com/prism-labs/prism/pkg/perrors"
	"github.com/prism-labs/prism/pkg/utxo"
)

// mempoolHighWatermark is the pending-transaction count at or above
// which the generator idles rather than adding more, matching the reference
// generator's len() >= 15 throttle.
const mempoolHighWatermark = 15

// maxTxPerTick caps how many transactions a single generation round
// admits. The reference generator's loop pushes a 6th transaction
// hash to its broadcast buffer before checking the cap and breaking —
// so it advertises a hash for a transaction that was never inserted
// into its own mempool. This stops as soon as the cap is reached,
// before the hash is ever produced.
const maxTxPerTick = 5

// Config holds the generator's wiring.
type Config struct {
	Keyring   *keyring.Keyring
	Mempool   *mempool.Mempool
	UTXO      *utxo.State
	Transport net.Transport
	Logger    *logger.Logger
}

// DefaultConfig returns a generator configuration with a fresh keyring.
func DefaultConfig() *Config {
	return &Config{Keyring: keyring.New(), Logger: logger.NewLogger(logger.DefaultConfig())}
}

// StartSignal carries the parameters of a Start command: Lambda is the
// delay observed between generation rounds, and Index selects which
// pair of the 6 fixed addresses this generator instance is
// responsible for spending from (0, 1, or 2).
type StartSignal struct {
	Lambda time.Duration
	Index  int
}

// Generator is a control-channel-driven transaction generation loop,
// mirroring miner.Miner's Run/Start/Exit lifecycle.
type Generator struct {
	mu sync.RWMutex

	keyring   *keyring.Keyring
	mempool   *mempool.Mempool
	utxo      *utxo.State
	transport net.Transport
	log       *logger.Logger
	accounts  [6]*keyring.Account

	startChan chan StartSignal
	ctx       context.Context
	cancel    context.CancelFunc

	running bool
}

// New loads the 6 fixed ICO keys into cfg.Keyring and builds a
// generator ready for Run.
func New(cfg *Config) (*Generator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewLogger(logger.DefaultConfig())
	}
	if cfg.Keyring == nil {
		cfg.Keyring = keyring.New()
	}
	accounts, err := keyring.LoadICOKeys(cfg.Keyring)
	if err != nil {
		return nil, fmt.Errorf("txgen: load ico keys: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		keyring:   cfg.Keyring,
		mempool:   cfg.Mempool,
		utxo:      cfg.UTXO,
		transport: cfg.Transport,
		log:       cfg.Logger,
		accounts:  accounts,
		startChan: make(chan StartSignal),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Run launches the control loop in a goroutine, paused until Start.
func (g *Generator) Run() {
	g.log.Info("txgen: initialized into paused mode")
	go g.controlLoop()
}

// Start moves the generator into continuous mode: lambda between
// rounds, index selecting the responsible address pair.
func (g *Generator) Start(lambda time.Duration, index int) {
	select {
	case g.startChan <- StartSignal{Lambda: lambda, Index: index}:
	case <-g.ctx.Done():
	}
}

// Exit shuts the generator down.
func (g *Generator) Exit() { g.cancel() }

// IsRunning reports whether the generator is in its continuous state.
func (g *Generator) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}

func (g *Generator) setRunning(v bool) {
	g.mu.Lock()
	g.running = v
	g.mu.Unlock()
}

func (g *Generator) controlLoop() {
	for {
		select {
		case <-g.ctx.Done():
			g.log.Info("txgen: shutting down")
			g.setRunning(false)
			return
		case sig := <-g.startChan:
			g.log.Info("txgen: starting continuous mode with lambda %s index %d", sig.Lambda, sig.Index)
			g.setRunning(true)
			g.genContinuously(sig)
			g.setRunning(false)
		}
	}
}

func (g *Generator) genContinuously(sig StartSignal) {
	for {
		select {
		case <-g.ctx.Done():
			return
		case next := <-g.startChan:
			sig = next
			g.log.Info("txgen: updated lambda to %s index %d", sig.Lambda, sig.Index)
		default:
		}

		if g.mempool.Len() >= mempoolHighWatermark {
			if g.sleep(sig.Lambda) {
				return
			}
			continue
		}

		responsible := g.responsibleAccounts(sig.Index)
		if len(responsible) == 0 {
			g.log.Warn("txgen: invalid index %d, no responsible addresses", sig.Index)
			if g.sleep(sig.Lambda) {
				return
			}
			continue
		}

		produced := g.generateBatch(responsible)
		if len(produced) > 0 && g.transport != nil {
			if err := g.transport.Broadcast(net.NewTransactionHashes(produced)); err != nil {
				g.log.Error("txgen: failed to broadcast new transaction hashes: %v", fmt.Errorf("%v: %w", err, perrors.ErrTransportError))
			}
		}

		if g.sleep(sig.Lambda) {
			return
		}
	}
}

// responsibleAccounts returns the pair of accounts index is allowed to
// spend from: {0,1} for index 0, {2,3} for index 1, {4,5} for index 2.
func (g *Generator) responsibleAccounts(index int) []*keyring.Account {
	switch index {
	case 0:
		return []*keyring.Account{g.accounts[0], g.accounts[1]}
	case 1:
		return []*keyring.Account{g.accounts[2], g.accounts[3]}
	case 2:
		return []*keyring.Account{g.accounts[4], g.accounts[5]}
	default:
		return nil
	}
}

func (g *Generator) accountFor(addr crypto.H160) *keyring.Account {
	for _, a := range g.accounts {
		if a.Address == addr {
			return a
		}
	}
	return nil
}

// generateBatch scans the current UTXO set for outputs owned by one of
// responsible's addresses, not already claimed in the mempool, and
// signs a single-input spend to a random one of the 6 fixed addresses
// for each, up to maxTxPerTick.
func (g *Generator) generateBatch(responsible []*keyring.Account) []crypto.H256 {
	entries := g.utxo.Entries()
	produced := make([]crypto.H256, 0, maxTxPerTick)

	for in, out := range entries {
		if len(produced) >= maxTxPerTick {
			break
		}
		if g.mempool.ContainsInput(in) {
			continue
		}

		owned := false
		for _, a := range responsible {
			if a.Address == out.Recipient {
				owned = true
				break
			}
		}
		if !owned {
			continue
		}

		signer := g.accountFor(out.Recipient)
		if signer == nil {
			g.log.Warn("txgen: no known key for recipient %s", out.Recipient)
			continue
		}

		recipient := g.accounts[rand.Intn(len(g.accounts))].Address
		tx := utxo.Transaction{
			Inputs:  []utxo.Input{in},
			Outputs: []utxo.Output{{Recipient: recipient, Value: out.Value}},
		}
		signed := &utxo.SignedTransaction{
			Tx:        tx,
			Signature: utxo.Sign(tx, signer.PrivateKey),
			PublicKey: signer.PublicKey,
		}

		hash := signed.Hash()
		if g.mempool.Contains(hash) {
			continue
		}

		g.mempool.Insert(signed)
		produced = append(produced, hash)
	}
	return produced
}

func (g *Generator) sleep(lambda time.Duration) (cancelled bool) {
	if lambda <= 0 {
		return false
	}
	select {
	case <-g.ctx.Done():
		return true
	case <-time.After(lambda):
		return false
	}
}
