package txgen

import (
	"testing"

	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/keyring"
	"github.com/prism-labs/prism/pkg/mempool"
	"github.com/prism-labs/prism/pkg/utxo"
)

func newTestGenerator(t *testing.T) (*Generator, *mempool.Mempool) {
	t.Helper()

	state := utxo.NewState()
	k := keyring.New()
	pool := mempool.New(nil)

	g, err := New(&Config{Keyring: k, Mempool: pool, UTXO: state})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var addresses [6]crypto.H160
	for i, a := range g.accounts {
		addresses[i] = a.Address
	}
	state.PerformICO(addresses)

	return g, pool
}

func TestResponsibleAccountsMapsIndexToAddressPair(t *testing.T) {
	g, _ := newTestGenerator(t)

	pair0 := g.responsibleAccounts(0)
	if len(pair0) != 2 || pair0[0].Address != g.accounts[0].Address || pair0[1].Address != g.accounts[1].Address {
		t.Fatalf("index 0 should map to accounts 0,1, got %+v", pair0)
	}

	pair2 := g.responsibleAccounts(2)
	if len(pair2) != 2 || pair2[0].Address != g.accounts[4].Address || pair2[1].Address != g.accounts[5].Address {
		t.Fatalf("index 2 should map to accounts 4,5, got %+v", pair2)
	}

	if got := g.responsibleAccounts(7); got != nil {
		t.Fatalf("out-of-range index should return nil, got %+v", got)
	}
}

func TestGenerateBatchSignsAndAdmitsOwnedOutputs(t *testing.T) {
	g, pool := newTestGenerator(t)

	responsible := g.responsibleAccounts(0)
	produced := g.generateBatch(responsible)

	if len(produced) == 0 {
		t.Fatal("expected at least one transaction generated from the seeded ICO outputs")
	}
	if len(produced) > maxTxPerTick {
		t.Fatalf("produced %d transactions, want at most %d", len(produced), maxTxPerTick)
	}
	for _, hash := range produced {
		if !pool.Contains(hash) {
			t.Fatalf("produced hash %s was not actually admitted to the mempool", hash)
		}
	}
}

func TestGenerateBatchSkipsInputsAlreadyClaimedInMempool(t *testing.T) {
	g, pool := newTestGenerator(t)

	responsible := g.responsibleAccounts(0)
	first := g.generateBatch(responsible)
	if len(first) == 0 {
		t.Fatal("expected the first round to produce transactions")
	}

	second := g.generateBatch(responsible)
	for _, hash := range second {
		if !pool.Contains(hash) {
			t.Fatalf("second round hash %s not admitted", hash)
		}
	}
	for _, hash := range first {
		for _, other := range second {
			if hash == other {
				t.Fatalf("second round reused an input already claimed by %s", hash)
			}
		}
	}
}
