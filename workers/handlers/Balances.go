package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/samber/lo"

	"goxchain/types"
)

// Balances returns the ledger, ?chain= may repeat
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	chains := lo.Map(r.URL.Query()["chain"], func(c string, _ int) types.ChainID {
		return types.ChainID(c)
	})
	responseJSON(w, h.sim.GetBalances(chains...), http.StatusOK)
}

func (h *Handler) BalanceTotal(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")
	total, err := h.sim.TotalBalance(tokenID)
	if err != nil {
		responseError(w, err)
		return
	}
	responseJSON(w, &APITotalResponse{Token: tokenID, Total: total}, http.StatusOK)
}
