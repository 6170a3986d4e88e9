package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/samber/lo"

	"goxchain/types"
)

// GetTransactions lists the transfer history, newest first, optionally
// ?status=failed to see what was rolled back
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.sim.ListTransactions()
	if status := r.URL.Query().Get("status"); status != "" {
		txs = lo.Filter(txs, func(tx types.Transaction, _ int) bool {
			return tx.Status == types.Status(status)
		})
	}
	responseJSON(w, txs, http.StatusOK)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.sim.Transaction(chi.URLParam(r, "id"))
	if err != nil {
		responseError(w, err)
		return
	}
	responseJSON(w, tx, http.StatusOK)
}
