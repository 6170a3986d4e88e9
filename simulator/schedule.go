package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"goxchain/config"
	"goxchain/types"
)

// Phase is a suspension point of a pipeline
type Phase string

const (
	PhaseSource      Phase = "source"
	PhaseDestination Phase = "destination"
)

// Scheduler suspends a pipeline before a phase completes; it models network
// delay and must honour ctx (the phase timeout is delivered through it)
type Scheduler interface {
	Wait(ctx context.Context, kind string, phase Phase) error
}

// FaultInjector decides whether a phase fails, a nil error lets it proceed
type FaultInjector interface {
	Fault(kind string, op types.Operation, phase Phase) error
}

// FaultFunc adapts a function to FaultInjector
type FaultFunc func(kind string, op types.Operation, phase Phase) error

func (f FaultFunc) Fault(kind string, op types.Operation, phase Phase) error {
	return f(kind, op, phase)
}

// NoFaults never fails
var NoFaults = FaultFunc(func(string, types.Operation, Phase) error { return nil })

// ImmediateScheduler does not wait at all
type ImmediateScheduler struct{}

func (ImmediateScheduler) Wait(ctx context.Context, _ string, _ Phase) error {
	return ctx.Err()
}

// RandomScheduler sleeps a uniformly distributed delay per (kind, phase)
type RandomScheduler struct {
	ranges map[string]config.DelayRange
	rng    *lockedRand
}

func NewRandomScheduler(cfg config.SimulatorConfig, seed uint64) *RandomScheduler {
	return &RandomScheduler{
		ranges: map[string]config.DelayRange{
			delayKey(kindMessage, PhaseSource):       cfg.MessageSource,
			delayKey(kindMessage, PhaseDestination):  cfg.MessageDestination,
			delayKey(kindTransfer, PhaseSource):      cfg.TransferSource,
			delayKey(kindTransfer, PhaseDestination): cfg.TransferDestination,
		},
		rng: newLockedRand(seed),
	}
}

func delayKey(kind string, phase Phase) string {
	return kind + "/" + string(phase)
}

func (s *RandomScheduler) Delay(kind string, phase Phase) time.Duration {
	r := s.ranges[delayKey(kind, phase)]
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(s.rng.Int64N(int64(r.Max-r.Min)+1))
}

func (s *RandomScheduler) Wait(ctx context.Context, kind string, phase Phase) error {
	t := time.NewTimer(s.Delay(kind, phase))
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RandomFaults fails a phase with the configured probability
type RandomFaults struct {
	rate float64
	rng  *lockedRand
}

func NewRandomFaults(rate float64, seed uint64) *RandomFaults {
	return &RandomFaults{rate: rate, rng: newLockedRand(seed)}
}

func (f *RandomFaults) Fault(kind string, op types.Operation, phase Phase) error {
	if f.rate > 0 && f.rng.Float64() < f.rate {
		return fmt.Errorf("simulated network fault on %s chain", chainOf(op, phase))
	}
	return nil
}

func chainOf(op types.Operation, phase Phase) types.ChainID {
	if phase == PhaseSource {
		return op.FromChain
	}
	return op.ToChain
}

// math/rand/v2 generators are not safe for concurrent use
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed uint64) *lockedRand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Uint64()
}

func (l *lockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}
