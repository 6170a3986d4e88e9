package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"goxchain/types"
)

func TestMetrics(t *testing.T) {
	req := require.New(t)
	m := New(prometheus.NewRegistry())

	m.Submitted(KindTransfer, types.ChainSolana, types.ChainEthereum)
	m.Submitted(KindTransfer, types.ChainSolana, types.ChainEthereum)
	m.Confirmed(KindTransfer, types.ChainSolana, types.ChainEthereum, 3*time.Second)
	m.Failed(KindTransfer, types.ChainSolana, types.ChainEthereum, "destination")
	m.Compensated(types.ChainSolana, "usdc")
	m.Rejected(KindMessage, "validation")
	m.SetPending(KindMessage, 4)

	req.Equal(2.0, testutil.ToFloat64(m.submittedCount.WithLabelValues(KindTransfer, "solana", "ethereum")))
	req.Equal(1.0, testutil.ToFloat64(m.confirmedCount.WithLabelValues(KindTransfer, "solana", "ethereum")))
	req.Equal(1.0, testutil.ToFloat64(m.failedCount.WithLabelValues(KindTransfer, "solana", "ethereum", "destination")))
	req.Equal(1.0, testutil.ToFloat64(m.compensationCount.WithLabelValues("solana", "usdc")))
	req.Equal(1.0, testutil.ToFloat64(m.rejectedCount.WithLabelValues(KindMessage, "validation")))
	req.Equal(4.0, testutil.ToFloat64(m.pendingGauge.WithLabelValues(KindMessage)))
	req.Equal(1, testutil.CollectAndCount(m.settlementSeconds))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
}
