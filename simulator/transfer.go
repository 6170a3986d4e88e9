package simulator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goxchain/types"
)

const maxAmountExponent = 64

// Transfer validates the request, debits the source balance optimistically
// and records a pending transaction that settles in the background. Nothing
// is recorded or debited when validation or the balance check fails.
func (s *Simulator) Transfer(ctx context.Context, from, to types.ChainID, tokenID, amountStr string) (types.Transaction, error) {
	token, amount, err := s.validateTransfer(from, to, tokenID, amountStr)
	if err != nil {
		s.metrics.Rejected(kindTransfer, "validation")
		return types.Transaction{}, err
	}

	// check and debit happen under one ledger lock, two transfers racing on
	// the same balance serialize here
	if _, err := s.ledger.Debit(from, token.ID, amount); err != nil {
		s.metrics.Rejected(kindTransfer, "insufficient_balance")
		return types.Transaction{}, fmt.Errorf("cannot transfer %s %s from %s: %w", amountStr, token.Symbol, from, err)
	}

	var compensations saga
	compensations.add("reverse source debit", func() error {
		_, err := s.ledger.Credit(from, token, amount)
		if err == nil {
			s.metrics.Compensated(from, token.ID)
		}
		return err
	})

	tx := types.Transaction{
		Operation: types.Operation{
			ID:        uuid.New().String(),
			FromChain: from,
			ToChain:   to,
			Status:    types.StatusPending,
			Timestamp: s.now(),
		},
		Token:  token,
		Amount: amount.StringFixed(token.Decimals),
	}

	done := s.track(tx.ID)
	if err := s.transfers.Append(tx); err != nil {
		close(done)
		if _, cerr := compensations.compensate(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return types.Transaction{}, err
	}

	log := s.log.With(
		zap.String("id", tx.ID),
		zap.String("kind", kindTransfer),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("token", token.Symbol),
		zap.String("amount", tx.Amount),
	)
	log.Info("Transferring tokens")

	s.metrics.Submitted(kindTransfer, from, to)
	s.emit(types.Event{Type: types.EventCreated, At: tx.Timestamp, Transaction: &tx})

	s.wg.Add(1)
	go s.runTransfer(context.WithoutCancel(ctx), tx, amount, &compensations, done, log)

	return tx, nil
}

func (s *Simulator) validateTransfer(from, to types.ChainID, tokenID, amountStr string) (types.Token, decimal.Decimal, error) {
	if err := s.validateRoute(from, to); err != nil {
		return types.Token{}, decimal.Zero, err
	}
	token, err := s.Token(tokenID)
	if err != nil {
		return types.Token{}, decimal.Zero, err
	}
	if !token.SupportsChain(from) || !token.SupportsChain(to) {
		return types.Token{}, decimal.Zero, invalid("tokenId", "token %s is not available on both %s and %s", token.Symbol, from, to)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil {
		return types.Token{}, decimal.Zero, invalid("amount", "%q is not a number", amountStr)
	}
	// rescaling is proportional to the exponent, "1e900000000" must not reach it
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return types.Token{}, decimal.Zero, invalid("amount", "%q is out of range", amountStr)
	}
	if !amount.IsPositive() {
		return types.Token{}, decimal.Zero, invalid("amount", "must be positive, got %s", amountStr)
	}
	if !amount.Equal(amount.Truncate(token.Decimals)) {
		return types.Token{}, decimal.Zero, invalid("amount", "%s supports at most %d decimals", token.Symbol, token.Decimals)
	}
	return token, amount, nil
}

func (s *Simulator) runTransfer(ctx context.Context, tx types.Transaction, amount decimal.Decimal, compensations *saga, done chan struct{}, log *zap.Logger) {
	defer s.wg.Done()
	defer close(done)

	if err := s.phase(ctx, kindTransfer, tx.Operation, PhaseSource); err != nil {
		s.failTransfer(tx.ID, PhaseSource, err, compensations, log)
		return
	}

	hash := s.txHash(tx.ID, PhaseSource)
	updated, err := updateHeader(s.transfers, tx.ID, func(op *types.Operation) {
		op.TxHash = hash
	})
	if err != nil {
		s.failTransfer(tx.ID, PhaseSource, err, compensations, log)
		return
	}
	log.Info("Transfer confirmed on source chain", zap.String("txHash", hash))
	s.emit(types.Event{Type: types.EventSourceConfirmed, At: s.now(), Transaction: &updated})

	if err := s.phase(ctx, kindTransfer, updated.Operation, PhaseDestination); err != nil {
		s.failTransfer(tx.ID, PhaseDestination, err, compensations, log)
		return
	}

	if _, err := s.ledger.Credit(tx.ToChain, tx.Token, amount); err != nil {
		s.failTransfer(tx.ID, PhaseDestination, err, compensations, log)
		return
	}
	compensations.add("reverse destination credit", func() error {
		_, err := s.ledger.Debit(tx.ToChain, tx.Token.ID, amount)
		return err
	})

	confirmedAt := s.now()
	confirmed, err := updateHeader(s.transfers, tx.ID, func(op *types.Operation) {
		op.Status = types.StatusConfirmed
		op.ConfirmedAt = &confirmedAt
	})
	if err != nil {
		s.failTransfer(tx.ID, PhaseDestination, err, compensations, log)
		return
	}

	log.Info("Transfer settled", zap.Duration("elapsed", confirmedAt.Sub(tx.Timestamp)))
	s.metrics.Confirmed(kindTransfer, tx.FromChain, tx.ToChain, confirmedAt.Sub(tx.Timestamp))
	s.emit(types.Event{Type: types.EventConfirmed, At: confirmedAt, Transaction: &confirmed})
}

// failTransfer unwinds the ledger first, so a poller that sees the failed
// record also sees the restored balance
func (s *Simulator) failTransfer(id string, phase Phase, cause error, compensations *saga, log *zap.Logger) {
	log.Error("Failed to transfer tokens", zap.String("phase", string(phase)), zap.Error(cause))

	reason := cause.Error()
	undone, err := compensations.compensate()
	if err != nil {
		log.Error("Cannot compensate failed transfer", zap.Strings("compensated", undone), zap.Error(err))
		reason += "; compensation failed: " + err.Error()
	} else {
		log.Info("Transfer compensated", zap.Strings("compensated", undone))
		reason += "; " + strings.Join(undone, ", ")
	}

	failed, err := updateHeader(s.transfers, id, func(op *types.Operation) {
		op.Status = types.StatusFailed
		op.Error = reason
	})
	if err != nil {
		log.Error("Cannot mark transfer as failed", zap.Error(err))
		return
	}

	s.metrics.Failed(kindTransfer, failed.FromChain, failed.ToChain, string(phase))
	s.emit(types.Event{Type: types.EventFailed, At: s.now(), Transaction: &failed})
}
