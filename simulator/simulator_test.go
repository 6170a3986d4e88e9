package simulator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"goxchain/config"
	"goxchain/types"
)

// gateScheduler holds every pipeline at a phase until the test releases it
type gateScheduler struct {
	gates map[Phase]chan struct{}
}

func newGateScheduler() *gateScheduler {
	return &gateScheduler{gates: map[Phase]chan struct{}{
		PhaseSource:      make(chan struct{}),
		PhaseDestination: make(chan struct{}),
	}}
}

func (g *gateScheduler) Wait(ctx context.Context, _ string, phase Phase) error {
	select {
	case <-g.gates[phase]:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gateScheduler) release(t *testing.T, phase Phase) {
	t.Helper()
	select {
	case g.gates[phase] <- struct{}{}:
	case <-time.After(2 * time.Second):
		t.Fatalf("no pipeline waiting on %s phase", phase)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []types.Event
}

func (r *recordingSink) Publish(ev types.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) eventTypes() []types.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []types.EventType{}
	for _, ev := range r.events {
		if ev.Type != types.EventBalance {
			res = append(res, ev.Type)
		}
	}
	return res
}

func newTestSimulator(t *testing.T, opts Options) *Simulator {
	t.Helper()
	if opts.Scheduler == nil {
		opts.Scheduler = ImmediateScheduler{}
	}
	if opts.Faults == nil {
		opts.Faults = NoFaults
	}
	sim, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(sim.Wait)
	return sim
}

func waitEvent(t *testing.T, events <-chan types.Event, typ types.EventType, id string) types.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != typ {
				continue
			}
			if ev.Message != nil && ev.Message.ID == id {
				return ev
			}
			if ev.Transaction != nil && ev.Transaction.ID == id {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %s event for %s", typ, id)
		}
	}
}

func balanceOf(t *testing.T, sim *Simulator, chain types.ChainID, tokenID string) decimal.Decimal {
	t.Helper()
	for _, b := range sim.GetBalances(chain) {
		if b.Token.ID == tokenID {
			return decimal.RequireFromString(b.Balance)
		}
	}
	return decimal.Zero
}

func failAt(phase Phase) FaultInjector {
	return FaultFunc(func(_ string, _ types.Operation, p Phase) error {
		if p == phase {
			return errors.New("relayer unreachable")
		}
		return nil
	})
}

func TestNew(t *testing.T) {
	t.Run("seeds default balances", func(t *testing.T) {
		req := require.New(t)
		sim := newTestSimulator(t, Options{})
		req.Len(sim.GetBalances(), len(config.InitialBalances))
		req.Equal("1000.000000", sim.GetBalances(types.ChainSolana)[0].Balance)
		req.Len(sim.Networks(), 4)
		req.Len(sim.Tokens(), 4)
	})

	t.Run("empty seed list", func(t *testing.T) {
		sim := newTestSimulator(t, Options{Balances: []config.SeedBalance{}})
		require.Empty(t, sim.GetBalances())
	})

	t.Run("rejects seed for unknown token", func(t *testing.T) {
		_, err := New(Options{Balances: []config.SeedBalance{{TokenID: "doge", Chain: types.ChainSolana, Amount: "1"}}})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects malformed seed amount", func(t *testing.T) {
		_, err := New(Options{Balances: []config.SeedBalance{{TokenID: "usdc", Chain: types.ChainSolana, Amount: "lots"}}})
		require.Error(t, err)
	})
}

func TestSubscribe(t *testing.T) {
	req := require.New(t)
	sim := newTestSimulator(t, Options{})

	events, cancel := sim.Subscribe(16)
	msg, err := sim.Send(context.Background(), types.ChainSolana, types.ChainPolygon, "gm")
	req.NoError(err)
	waitEvent(t, events, types.EventConfirmed, msg.ID)

	cancel()
	cancel()
	for range events {
		// drain until closed
	}
}

func TestSinks_ReceiveLifecycleInOrder(t *testing.T) {
	req := require.New(t)
	sink := &recordingSink{}
	sim := newTestSimulator(t, Options{Sinks: []Sink{sink}})

	msg, err := sim.Send(context.Background(), types.ChainSolana, types.ChainPolygon, "gm")
	req.NoError(err)
	_, err = sim.AwaitMessage(context.Background(), msg.ID)
	req.NoError(err)

	req.Equal([]types.EventType{types.EventCreated, types.EventSourceConfirmed, types.EventConfirmed}, sink.eventTypes())
}

func TestRandomScheduler_Delay(t *testing.T) {
	req := require.New(t)
	cfg := config.DefaultSimulator()
	s := NewRandomScheduler(cfg, 42)

	for i := 0; i < 200; i++ {
		d := s.Delay(kindTransfer, PhaseDestination)
		req.GreaterOrEqual(d, cfg.TransferDestination.Min)
		req.LessOrEqual(d, cfg.TransferDestination.Max)
	}

	fixed := config.SimulatorConfig{MessageSource: config.DelayRange{Min: time.Second, Max: time.Second}}
	req.Equal(time.Second, NewRandomScheduler(fixed, 1).Delay(kindMessage, PhaseSource))

	// same seed, same sequence
	a, b := NewRandomScheduler(cfg, 7), NewRandomScheduler(cfg, 7)
	req.Equal(a.Delay(kindMessage, PhaseSource), b.Delay(kindMessage, PhaseSource))
}

func TestRandomScheduler_WaitHonoursContext(t *testing.T) {
	cfg := config.SimulatorConfig{MessageSource: config.DelayRange{Min: time.Hour, Max: time.Hour}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := NewRandomScheduler(cfg, 1).Wait(ctx, kindMessage, PhaseSource)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRandomFaults(t *testing.T) {
	req := require.New(t)
	op := types.Operation{FromChain: types.ChainSolana, ToChain: types.ChainEthereum}

	always := NewRandomFaults(1, 3)
	never := NewRandomFaults(0, 3)
	for i := 0; i < 20; i++ {
		req.ErrorContains(always.Fault(kindTransfer, op, PhaseDestination), "ethereum")
		req.NoError(never.Fault(kindTransfer, op, PhaseDestination))
	}
}

func TestSaga_CompensatesInReverse(t *testing.T) {
	req := require.New(t)
	var order []string
	var s saga
	s.add("first", func() error { order = append(order, "first"); return nil })
	s.add("second", func() error { return errors.New("stuck") })
	s.add("third", func() error { order = append(order, "third"); return nil })

	done, err := s.compensate()
	req.ErrorContains(err, "second: stuck")
	req.Equal([]string{"third", "first"}, done)
	req.Equal([]string{"third", "first"}, order)

	done, err = s.compensate()
	req.NoError(err)
	req.Empty(done)
}

func TestTxHash(t *testing.T) {
	req := require.New(t)
	sim := newTestSimulator(t, Options{Config: config.SimulatorConfig{Seed: 9}})

	h1 := sim.txHash("op", PhaseSource)
	h2 := sim.txHash("op", PhaseSource)
	req.NotEqual(h1, h2)
	req.Len(h1, 66)

	raw, err := hexutil.Decode(h1)
	req.NoError(err)
	req.Len(raw, 32)
}
