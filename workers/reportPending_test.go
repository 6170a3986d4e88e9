package workers

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"goxchain/metrics"
)

type fixedCounts struct{ messages, transactions int }

func (f fixedCounts) PendingCounts() (int, int) {
	return f.messages, f.transactions
}

func TestReportPending(t *testing.T) {
	req := require.New(t)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	core, logs := observer.New(zap.InfoLevel)

	reportPending(fixedCounts{messages: 2, transactions: 5}, m, zap.New(core))

	req.Equal(1, logs.FilterMessage("Operations in flight").Len())
	entry := logs.All()[0].ContextMap()
	req.EqualValues(2, entry["messages"])
	req.EqualValues(5, entry["transactions"])

	req.Equal(7.0, pendingSum(t, registry))
	req.Equal(2, testutil.CollectAndCount(registry, "xchain_pending_operations"))

	// nothing in flight stays quiet
	reportPending(fixedCounts{}, m, zap.New(core))
	req.Equal(1, logs.Len())
	req.Zero(pendingSum(t, registry))
}

func pendingSum(t *testing.T, registry *prometheus.Registry) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range families {
		if mf.GetName() != "xchain_pending_operations" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			sum += metric.GetGauge().GetValue()
		}
	}
	return sum
}

func TestShutdown(t *testing.T) {
	req := require.New(t)
	t.Cleanup(func() { workerShutdown.Store(false) })

	req.False(stopping())
	Shutdown()
	req.True(stopping())
}
