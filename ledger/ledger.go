// Package ledger keeps the in-memory table of token balances per chain.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"goxchain/types"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

type key struct {
	chain   types.ChainID
	tokenID string
}

type entry struct {
	token   types.Token
	chain   types.ChainID
	balance decimal.Decimal
}

// Ledger is safe for concurrent use. A single mutex serializes every
// mutation, so a check-and-debit on one key can never interleave with another.
type Ledger struct {
	mu      sync.RWMutex
	entries []*entry // insertion order, snapshots keep it
	index   map[key]*entry

	onChange func(types.BalanceEntry)
}

func New() *Ledger {
	return &Ledger{
		index: make(map[key]*entry),
	}
}

// OnChange registers a hook called (outside the lock) after each committed mutation
func (l *Ledger) OnChange(fn func(types.BalanceEntry)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Set overwrites (or creates) the balance of token on chain, used for seeding
func (l *Ledger) Set(chain types.ChainID, token types.Token, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	l.mu.Lock()
	e := l.upsert(chain, token)
	e.balance = amount
	snap := e.snapshot()
	hook := l.onChange
	l.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}

// Debit subtracts amount from an existing entry, never letting it go negative
func (l *Ledger) Debit(chain types.ChainID, tokenID string, amount decimal.Decimal) (types.BalanceEntry, error) {
	if !amount.IsPositive() {
		return types.BalanceEntry{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	e, ok := l.index[key{chain, tokenID}]
	if !ok {
		l.mu.Unlock()
		return types.BalanceEntry{}, fmt.Errorf("%w: %s on %s", ErrInsufficientBalance, tokenID, chain)
	}
	if e.balance.LessThan(amount) {
		l.mu.Unlock()
		return types.BalanceEntry{}, fmt.Errorf("%w: %s %s on %s, requested %s", ErrInsufficientBalance,
			e.balance.StringFixed(e.token.Decimals), e.token.Symbol, chain, amount)
	}
	e.balance = e.balance.Sub(amount)
	snap := e.snapshot()
	hook := l.onChange
	l.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return snap, nil
}

// Credit adds amount, creating the entry with amount as its initial value when absent
func (l *Ledger) Credit(chain types.ChainID, token types.Token, amount decimal.Decimal) (types.BalanceEntry, error) {
	if !amount.IsPositive() {
		return types.BalanceEntry{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	e, ok := l.index[key{chain, token.ID}]
	if ok {
		e.balance = e.balance.Add(amount)
	} else {
		e = l.upsert(chain, token)
		e.balance = amount
	}
	snap := e.snapshot()
	hook := l.onChange
	l.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return snap, nil
}

// Balance returns the raw balance for (chain, token)
func (l *Ledger) Balance(chain types.ChainID, tokenID string) (decimal.Decimal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.index[key{chain, tokenID}]
	if !ok {
		return decimal.Zero, false
	}
	return e.balance, true
}

// Get returns a snapshot of entries, optionally restricted to chain and token id
// (empty values match everything)
func (l *Ledger) Get(chain types.ChainID, tokenID string) []types.BalanceEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res := make([]types.BalanceEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if chain != "" && e.chain != chain {
			continue
		}
		if tokenID != "" && e.token.ID != tokenID {
			continue
		}
		res = append(res, e.snapshot())
	}
	return res
}

// Total sums a token across every chain
func (l *Ledger) Total(tokenID string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, e := range l.entries {
		if e.token.ID == tokenID {
			total = total.Add(e.balance)
		}
	}
	return total
}

// must hold l.mu
func (l *Ledger) upsert(chain types.ChainID, token types.Token) *entry {
	k := key{chain, token.ID}
	if e, ok := l.index[k]; ok {
		return e
	}
	e := &entry{token: token, chain: chain, balance: decimal.Zero}
	l.index[k] = e
	l.entries = append(l.entries, e)
	return e
}

func (e *entry) snapshot() types.BalanceEntry {
	return types.BalanceEntry{
		Token:   e.token,
		Chain:   e.chain,
		Balance: e.balance.StringFixed(e.token.Decimals),
	}
}
