// Package handlers is the JSON HTTP adapter over the simulator
package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"goxchain/types"
)

// Facade is the part of the simulator the HTTP layer needs
type Facade interface {
	Send(ctx context.Context, from, to types.ChainID, text string) (types.Message, error)
	Transfer(ctx context.Context, from, to types.ChainID, tokenID, amount string) (types.Transaction, error)
	ListMessages() []types.Message
	ListTransactions() []types.Transaction
	Message(id string) (types.Message, error)
	Transaction(id string) (types.Transaction, error)
	GetBalances(chains ...types.ChainID) []types.BalanceEntry
	TotalBalance(tokenID string) (string, error)
	Networks() []types.Network
	Tokens() []types.Token
}

type Handler struct {
	sim      Facade
	log      *zap.Logger
	validate *validator.Validate
}

func New(sim Facade, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		sim:      sim,
		log:      log,
		validate: newValidator(),
	}
}
