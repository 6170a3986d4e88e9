package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/samber/lo"

	"goxchain/types"
)

// GetMessages lists the message history, newest first, optionally ?status=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	msgs := h.sim.ListMessages()
	if status := r.URL.Query().Get("status"); status != "" {
		msgs = lo.Filter(msgs, func(m types.Message, _ int) bool {
			return m.Status == types.Status(status)
		})
	}
	responseJSON(w, msgs, http.StatusOK)
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.sim.Message(chi.URLParam(r, "id"))
	if err != nil {
		responseError(w, err)
		return
	}
	responseJSON(w, msg, http.StatusOK)
}
