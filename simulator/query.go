package simulator

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"goxchain/store"
	"goxchain/types"
)

// ListMessages returns a snapshot, newest first
func (s *Simulator) ListMessages() []types.Message {
	return s.messages.List()
}

// ListTransactions returns a snapshot, newest first
func (s *Simulator) ListTransactions() []types.Transaction {
	return s.transfers.List()
}

// GetBalances returns a snapshot of the ledger, restricted to chains when given
func (s *Simulator) GetBalances(chains ...types.ChainID) []types.BalanceEntry {
	all := s.ledger.Get("", "")
	if len(chains) == 0 {
		return all
	}
	return lo.Filter(all, func(b types.BalanceEntry, _ int) bool {
		return lo.Contains(chains, b.Chain)
	})
}

// TotalBalance sums a token over every chain
func (s *Simulator) TotalBalance(tokenID string) (string, error) {
	token, err := s.Token(tokenID)
	if err != nil {
		return "", err
	}
	return s.ledger.Total(token.ID).StringFixed(token.Decimals), nil
}

func (s *Simulator) Message(id string) (types.Message, error) {
	msg, ok := s.messages.Get(id)
	if !ok {
		return types.Message{}, fmt.Errorf("%w: message %s", ErrNotFound, id)
	}
	return msg, nil
}

func (s *Simulator) Transaction(id string) (types.Transaction, error) {
	tx, ok := s.transfers.Get(id)
	if !ok {
		return types.Transaction{}, fmt.Errorf("%w: transaction %s", ErrNotFound, id)
	}
	return tx, nil
}

// AwaitMessage blocks until the message is confirmed or failed
func (s *Simulator) AwaitMessage(ctx context.Context, id string) (types.Message, error) {
	return await(ctx, s, s.messages, id)
}

// AwaitTransaction blocks until the transaction is confirmed or failed
func (s *Simulator) AwaitTransaction(ctx context.Context, id string) (types.Transaction, error) {
	return await(ctx, s, s.transfers, id)
}

func await[T store.Record](ctx context.Context, s *Simulator, st *store.Store[T], id string) (T, error) {
	rec, ok := st.Get(id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if rec.Header().Status.Terminal() {
		return rec, nil
	}

	done, ok := s.doneChan(id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	select {
	case <-done:
	case <-ctx.Done():
		return rec, ctx.Err()
	}
	rec, _ = st.Get(id)
	return rec, nil
}

// PendingCounts returns the number of pending messages and transactions
func (s *Simulator) PendingCounts() (messages, transactions int) {
	return s.messages.Count(types.StatusPending), s.transfers.Count(types.StatusPending)
}

func (s *Simulator) Networks() []types.Network {
	return append([]types.Network(nil), s.networks...)
}

func (s *Simulator) Tokens() []types.Token {
	return append([]types.Token(nil), s.tokens...)
}

func (s *Simulator) Network(id types.ChainID) (types.Network, error) {
	n, ok := lo.Find(s.networks, func(n types.Network) bool { return n.ID == id })
	if !ok {
		return types.Network{}, invalid("chain", "network %q not found", id)
	}
	return n, nil
}

func (s *Simulator) Token(id string) (types.Token, error) {
	t, ok := lo.Find(s.tokens, func(t types.Token) bool { return t.ID == id })
	if !ok {
		return types.Token{}, invalid("tokenId", "token %q not found", id)
	}
	return t, nil
}
