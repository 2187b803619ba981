// Package metrics holds the node's Prometheus counters and gauges: a
// single registry threaded optionally into pkg/chain, pkg/mempool, and
// pkg/ledger, scraped by pkg/api's /metrics route.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every counter/gauge this node exposes, plus the
// prometheus.Registry they're registered against.
type Registry struct {
	Registry *prometheus.Registry

	BlocksInserted        prometheus.Counter
	OrphansBuffered       prometheus.Counter
	MempoolSize           prometheus.Gauge
	TransactionsConfirmed prometheus.Counter
}

// New builds a fresh, independently-scoped registry (not the global
// DefaultRegisterer) so tests can build as many as they like without
// colliding on metric names.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,
		BlocksInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prism",
			Subsystem: "chain",
			Name:      "blocks_inserted_total",
			Help:      "Blocks (proposer or voter) successfully linked into the local chain.",
		}),
		OrphansBuffered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prism",
			Subsystem: "chain",
			Name:      "orphans_buffered_total",
			Help:      "Blocks buffered pending a missing parent, proposer ref, or vote target.",
		}),
		MempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prism",
			Subsystem: "mempool",
			Name:      "pending_transactions",
			Help:      "Transactions currently pending in the mempool.",
		}),
		TransactionsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prism",
			Subsystem: "ledger",
			Name:      "transactions_confirmed_total",
			Help:      "Transactions applied to the UTXO state by the ledger manager.",
		}),
	}

	reg.MustRegister(r.BlocksInserted, r.OrphansBuffered, r.MempoolSize, r.TransactionsConfirmed)
	return r
}
