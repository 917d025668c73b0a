package web

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medchain"

// Metrics : counters describing ledger activity
type Metrics struct {
	BlocksSealed       prometheus.Counter
	TransactionsStaged prometheus.Counter
	Signups            prometheus.Counter
	ProofSearch        prometheus.Histogram
	ChainLength        prometheus.Gauge
}

// NewMetrics : Returns ledger metrics registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_sealed_total",
			Help:      "Number of blocks sealed since startup, genesis excluded.",
		}),
		TransactionsStaged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_staged_total",
			Help:      "Number of transactions staged into the pending buffer.",
		}),
		Signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Number of successful signups.",
		}),
		ProofSearch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "proof_search_seconds",
			Help:      "Time spent searching for a proof of work.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		ChainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of blocks in the chain, genesis included.",
		}),
	}
	reg.MustRegister(m.BlocksSealed, m.TransactionsStaged, m.Signups, m.ProofSearch, m.ChainLength)
	return m
}
