package workers

import (
	"time"

	"go.uber.org/zap"

	"goxchain/metrics"
)

type PendingCounter interface {
	PendingCounts() (messages, transactions int)
}

// Worker_reportPending logs and exports the number of in-flight operations
// every interval until Shutdown is called
func Worker_reportPending(sim PendingCounter, m *metrics.Metrics, interval time.Duration, log *zap.Logger) {
	// short ticks so shutdown is noticed quickly even with a long interval
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	last := time.Time{}
	for !stopping() {
		<-tick.C
		if time.Since(last) < interval {
			continue
		}
		last = time.Now()
		reportPending(sim, m, log)
	}
}

func reportPending(sim PendingCounter, m *metrics.Metrics, log *zap.Logger) {
	messages, transactions := sim.PendingCounts()
	m.SetPending(metrics.KindMessage, messages)
	m.SetPending(metrics.KindTransfer, transactions)
	if messages > 0 || transactions > 0 {
		log.Info("Operations in flight", zap.Int("messages", messages), zap.Int("transactions", transactions))
	}
}
