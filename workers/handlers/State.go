package handlers

import (
	"net/http"

	"github.com/samber/lo"

	"goxchain/types"
)

// State summarizes the history by status
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	msgs := h.sim.ListMessages()
	txs := h.sim.ListTransactions()

	responseJSON(w, &APIStateResponse{
		Status: "ok",
		Messages: lo.CountValuesBy(msgs, func(m types.Message) types.Status {
			return m.Status
		}),
		Transactions: lo.CountValuesBy(txs, func(tx types.Transaction) types.Status {
			return tx.Status
		}),
	}, http.StatusOK)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, &APIResponse{
		Status: "ok",
	}, http.StatusOK)
}
