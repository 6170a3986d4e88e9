package simulator

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goxchain/types"
)

// Send validates and records a message, then settles it in the background.
// The returned record is the pending snapshot; progress is observed through
// the query methods, AwaitMessage or Subscribe.
func (s *Simulator) Send(ctx context.Context, from, to types.ChainID, text string) (types.Message, error) {
	if err := s.validateRoute(from, to); err != nil {
		s.metrics.Rejected(kindMessage, "validation")
		return types.Message{}, err
	}
	if strings.TrimSpace(text) == "" {
		s.metrics.Rejected(kindMessage, "validation")
		return types.Message{}, invalid("message", "cannot be empty")
	}

	msg := types.Message{
		Operation: types.Operation{
			ID:        uuid.New().String(),
			FromChain: from,
			ToChain:   to,
			Status:    types.StatusPending,
			Timestamp: s.now(),
		},
		Message: text,
	}

	done := s.track(msg.ID)
	if err := s.messages.Append(msg); err != nil {
		close(done)
		return types.Message{}, err
	}

	log := s.log.With(
		zap.String("id", msg.ID),
		zap.String("kind", kindMessage),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	log.Info("Sending message", zap.Int("length", len(text)))

	s.metrics.Submitted(kindMessage, from, to)
	s.emit(types.Event{Type: types.EventCreated, At: msg.Timestamp, Message: &msg})

	s.wg.Add(1)
	go s.runMessage(context.WithoutCancel(ctx), msg, done, log)

	return msg, nil
}

func (s *Simulator) runMessage(ctx context.Context, msg types.Message, done chan struct{}, log *zap.Logger) {
	defer s.wg.Done()
	defer close(done)

	if err := s.phase(ctx, kindMessage, msg.Operation, PhaseSource); err != nil {
		s.failMessage(msg.ID, PhaseSource, err, log)
		return
	}

	hash := s.txHash(msg.ID, PhaseSource)
	updated, err := updateHeader(s.messages, msg.ID, func(op *types.Operation) {
		op.TxHash = hash
	})
	if err != nil {
		s.failMessage(msg.ID, PhaseSource, err, log)
		return
	}
	log.Info("Message confirmed on source chain", zap.String("txHash", hash))
	s.emit(types.Event{Type: types.EventSourceConfirmed, At: s.now(), Message: &updated})

	if err := s.phase(ctx, kindMessage, updated.Operation, PhaseDestination); err != nil {
		s.failMessage(msg.ID, PhaseDestination, err, log)
		return
	}

	confirmedAt := s.now()
	confirmed, err := updateHeader(s.messages, msg.ID, func(op *types.Operation) {
		op.Status = types.StatusConfirmed
		op.ConfirmedAt = &confirmedAt
	})
	if err != nil {
		s.failMessage(msg.ID, PhaseDestination, err, log)
		return
	}

	log.Info("Message delivered", zap.Duration("elapsed", confirmedAt.Sub(msg.Timestamp)))
	s.metrics.Confirmed(kindMessage, msg.FromChain, msg.ToChain, confirmedAt.Sub(msg.Timestamp))
	s.emit(types.Event{Type: types.EventConfirmed, At: confirmedAt, Message: &confirmed})
}

// no retry: a failed message stays failed, hash already assigned is kept
func (s *Simulator) failMessage(id string, phase Phase, cause error, log *zap.Logger) {
	log.Error("Failed to send message", zap.String("phase", string(phase)), zap.Error(cause))

	failed, err := updateHeader(s.messages, id, func(op *types.Operation) {
		op.Status = types.StatusFailed
		op.Error = cause.Error()
	})
	if err != nil {
		log.Error("Cannot mark message as failed", zap.Error(err))
		return
	}

	s.metrics.Failed(kindMessage, failed.FromChain, failed.ToChain, string(phase))
	s.emit(types.Event{Type: types.EventFailed, At: s.now(), Message: &failed})
}
