package handlers

import (
	"net/http"
)

func (h *Handler) Networks(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.sim.Networks(), http.StatusOK)
}

func (h *Handler) Tokens(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.sim.Tokens(), http.StatusOK)
}
