// Package simulator drives simulated cross-chain messages and token transfers
// from submission through source confirmation to destination settlement,
// keeping the balance ledger consistent and reversing optimistic debits when
// a transfer fails.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goxchain/config"
	"goxchain/ledger"
	"goxchain/metrics"
	"goxchain/store"
	"goxchain/types"
)

const (
	kindMessage  = metrics.KindMessage
	kindTransfer = metrics.KindTransfer
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientBalance = ledger.ErrInsufficientBalance
	ErrOperationFailed     = errors.New("operation failed")
	ErrNotFound            = store.ErrNotFound
)

// ValidationError names the offending input, it matches ErrValidation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Sink receives every event after the change is committed
type Sink interface {
	Publish(ev types.Event) error
}

type Options struct {
	// reference tables, config defaults when nil
	Networks []types.Network
	Tokens   []types.Token
	// starting ledger, config.InitialBalances when nil (pass an empty slice for none)
	Balances []config.SeedBalance

	Config    config.SimulatorConfig
	Scheduler Scheduler     // random delays from Config when nil
	Faults    FaultInjector // random faults at Config.FailureRate when nil
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	Sinks     []Sink
	Now       func() time.Time
}

type Simulator struct {
	cfg       config.SimulatorConfig
	networks  []types.Network
	tokens    []types.Token
	ledger    *ledger.Ledger
	messages  *store.Store[types.Message]
	transfers *store.Store[types.Transaction]
	scheduler Scheduler
	faults    FaultInjector
	metrics   *metrics.Metrics
	log       *zap.Logger
	sinks     []Sink
	now       func() time.Time
	rng       *lockedRand

	wg     sync.WaitGroup
	doneMu sync.Mutex
	done   map[string]chan struct{}

	subMu   sync.RWMutex
	subs    map[int]chan types.Event
	nextSub int
}

func New(opts Options) (*Simulator, error) {
	s := &Simulator{
		cfg:       opts.Config,
		networks:  opts.Networks,
		tokens:    opts.Tokens,
		ledger:    ledger.New(),
		messages:  store.New[types.Message](),
		transfers: store.New[types.Transaction](),
		scheduler: opts.Scheduler,
		faults:    opts.Faults,
		metrics:   opts.Metrics,
		log:       opts.Log,
		sinks:     opts.Sinks,
		now:       opts.Now,
		rng:       newLockedRand(opts.Config.Seed),
		done:      make(map[string]chan struct{}),
		subs:      make(map[int]chan types.Event),
	}
	if s.networks == nil {
		s.networks = config.Networks
	}
	if s.tokens == nil {
		s.tokens = config.Tokens
	}
	if s.scheduler == nil {
		s.scheduler = NewRandomScheduler(opts.Config, seedFor(opts.Config.Seed, 1))
	}
	if s.faults == nil {
		s.faults = NewRandomFaults(opts.Config.FailureRate, seedFor(opts.Config.Seed, 2))
	}
	if s.metrics == nil {
		s.metrics = metrics.New(prometheus.NewRegistry())
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	balances := opts.Balances
	if balances == nil {
		balances = config.InitialBalances
	}
	for _, b := range balances {
		token, err := s.Token(b.TokenID)
		if err != nil {
			return nil, fmt.Errorf("seed balance: %w", err)
		}
		if _, err := s.Network(b.Chain); err != nil {
			return nil, fmt.Errorf("seed balance: %w", err)
		}
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("seed balance %s@%s: %w", b.TokenID, b.Chain, err)
		}
		if err := s.ledger.Set(b.Chain, token, amount); err != nil {
			return nil, fmt.Errorf("seed balance %s@%s: %w", b.TokenID, b.Chain, err)
		}
	}

	// balance events are only interesting once seeding is done
	s.ledger.OnChange(func(b types.BalanceEntry) {
		s.emit(types.Event{Type: types.EventBalance, At: s.now(), Balance: &b})
	})

	return s, nil
}

func seedFor(seed, stream uint64) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + stream
}

// Wait blocks until every submitted operation reached a terminal status
func (s *Simulator) Wait() {
	s.wg.Wait()
}

// Subscribe returns a channel receiving every event from now on. A subscriber
// that does not keep up loses events rather than stalling the pipelines.
//
// Events follow commit order. A transfer's source debit is committed before
// its record exists, so its balance event arrives ahead of the transfer's
// created event; a rejected transfer emits neither.
func (s *Simulator) Subscribe(buffer int) (<-chan types.Event, func()) {
	ch := make(chan types.Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Simulator) emit(ev types.Event) {
	s.subMu.RLock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn("Subscriber is not keeping up, dropping event",
				zap.Int("subscriber", id),
				zap.String("event", string(ev.Type)),
			)
		}
	}
	s.subMu.RUnlock()

	for _, sink := range s.sinks {
		if err := sink.Publish(ev); err != nil {
			s.log.Error("Cannot publish event", zap.String("event", string(ev.Type)), zap.Error(err))
		}
	}
}

func (s *Simulator) track(id string) chan struct{} {
	ch := make(chan struct{})
	s.doneMu.Lock()
	s.done[id] = ch
	s.doneMu.Unlock()
	return ch
}

func (s *Simulator) doneChan(id string) (chan struct{}, bool) {
	s.doneMu.Lock()
	defer s.doneMu.Unlock()
	ch, ok := s.done[id]
	return ch, ok
}

// phase suspends the pipeline for the simulated delay, bounded by the phase
// timeout, then asks the fault injector whether the phase went through
func (s *Simulator) phase(ctx context.Context, kind string, op types.Operation, phase Phase) error {
	if s.cfg.PhaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.PhaseTimeout)
		defer cancel()
	}

	if err := s.scheduler.Wait(ctx, kind, phase); err != nil {
		return fmt.Errorf("%w: %s confirmation on %s: %w", ErrOperationFailed, phase, chainOf(op, phase), err)
	}
	if err := s.faults.Fault(kind, op, phase); err != nil {
		return fmt.Errorf("%w: %s confirmation on %s: %w", ErrOperationFailed, phase, chainOf(op, phase), err)
	}
	return nil
}

// record is the pointer side of types.Message / types.Transaction
type record[T any] interface {
	*T
	store.Record
	SetHeader(types.Operation)
}

func updateHeader[T store.Record, P record[T]](st *store.Store[T], id string, fn func(*types.Operation)) (T, error) {
	return st.Update(id, func(rec *T) error {
		p := P(rec)
		h := p.Header()
		fn(&h)
		p.SetHeader(h)
		return nil
	})
}

func (s *Simulator) validateRoute(from, to types.ChainID) error {
	if _, err := s.Network(from); err != nil {
		return invalid("fromChain", "unknown chain %q", from)
	}
	if _, err := s.Network(to); err != nil {
		return invalid("toChain", "unknown chain %q", to)
	}
	if from == to {
		return invalid("toChain", "source and destination chain are both %s", from)
	}
	return nil
}
