package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"goxchain/types"
)

// SubmitTransfer answers 202 with the pending record; the source balance is
// already debited when the response is written
func (h *Handler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req SubmitTransferRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	tx, err := h.sim.Transfer(r.Context(), types.ChainID(req.FromChain), types.ChainID(req.ToChain), req.TokenID, req.Amount)
	if err != nil {
		h.log.Info("Transfer rejected",
			zap.String("from", req.FromChain),
			zap.String("to", req.ToChain),
			zap.String("token", req.TokenID),
			zap.String("amount", req.Amount),
			zap.Error(err),
		)
		responseError(w, err)
		return
	}

	responseJSON(w, tx, http.StatusAccepted)
}
