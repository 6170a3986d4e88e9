package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"goxchain/types"
)

func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitMessageRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	msg, err := h.sim.Send(r.Context(), types.ChainID(req.FromChain), types.ChainID(req.ToChain), req.Message)
	if err != nil {
		h.log.Info("Message rejected", zap.String("from", req.FromChain), zap.String("to", req.ToChain), zap.Error(err))
		responseError(w, err)
		return
	}

	responseJSON(w, msg, http.StatusAccepted)
}
