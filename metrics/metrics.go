package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"goxchain/types"
)

const namespace = "xchain"

// operation kinds used as label values
const (
	KindMessage  = "message"
	KindTransfer = "transfer"
)

type Metrics struct {
	submittedCount    *prometheus.CounterVec
	confirmedCount    *prometheus.CounterVec
	failedCount       *prometheus.CounterVec
	rejectedCount     *prometheus.CounterVec
	compensationCount *prometheus.CounterVec
	settlementSeconds *prometheus.HistogramVec
	pendingGauge      *prometheus.GaugeVec
}

func New(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		submittedCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submitted_operations_total",
				Help:      "Number of operations accepted for processing",
			},
			[]string{"kind", "source_chain", "destination_chain"},
		),
		confirmedCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmed_operations_total",
				Help:      "Number of operations settled on the destination chain",
			},
			[]string{"kind", "source_chain", "destination_chain"},
		),
		failedCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_operations_total",
				Help:      "Number of operations that failed during a simulated phase",
			},
			[]string{"kind", "source_chain", "destination_chain", "phase"},
		),
		rejectedCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejected_requests_total",
				Help:      "Number of requests rejected before a record was created",
			},
			[]string{"kind", "reason"},
		),
		compensationCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compensations_total",
				Help:      "Number of optimistic debits reversed after a failed transfer",
			},
			[]string{"source_chain", "token"},
		),
		settlementSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "settlement_seconds",
				Help:      "Time from submission to destination confirmation",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 8, 10, 15, 20, 30},
			},
			[]string{"kind"},
		),
		pendingGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_operations",
				Help:      "Number of operations currently pending",
			},
			[]string{"kind"},
		),
	}

	registerer.MustRegister(m.submittedCount)
	registerer.MustRegister(m.confirmedCount)
	registerer.MustRegister(m.failedCount)
	registerer.MustRegister(m.rejectedCount)
	registerer.MustRegister(m.compensationCount)
	registerer.MustRegister(m.settlementSeconds)
	registerer.MustRegister(m.pendingGauge)

	return &m
}

func (m *Metrics) Submitted(kind string, from, to types.ChainID) {
	m.submittedCount.WithLabelValues(kind, string(from), string(to)).Inc()
}

func (m *Metrics) Confirmed(kind string, from, to types.ChainID, elapsed time.Duration) {
	m.confirmedCount.WithLabelValues(kind, string(from), string(to)).Inc()
	m.settlementSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) Failed(kind string, from, to types.ChainID, phase string) {
	m.failedCount.WithLabelValues(kind, string(from), string(to), phase).Inc()
}

func (m *Metrics) Rejected(kind, reason string) {
	m.rejectedCount.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) Compensated(chain types.ChainID, tokenID string) {
	m.compensationCount.WithLabelValues(string(chain), tokenID).Inc()
}

func (m *Metrics) SetPending(kind string, n int) {
	m.pendingGauge.WithLabelValues(kind).Set(float64(n))
}
