package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"goxchain/simulator"
)

func responseJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// responseError maps simulator errors to status codes
func responseError(w http.ResponseWriter, err error) {
	var verr *simulator.ValidationError
	switch {
	case errors.As(err, &verr):
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   verr.Field,
			Message: verr.Reason,
		}, http.StatusBadRequest)
	case errors.Is(err, simulator.ErrInsufficientBalance):
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "amount",
			Message: err.Error(),
		}, http.StatusConflict)
	case errors.Is(err, simulator.ErrNotFound):
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: err.Error(),
		}, http.StatusNotFound)
	default:
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "internal error",
		}, http.StatusInternalServerError)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into req and validates it, writing the
// 400 response itself when it returns false
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.log.Info("Error unmarshalling request body", zap.Error(err))
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			responseJSON(w, &APIResponse{
				Status:  "error",
				Field:   verrs[0].Field(),
				Message: "failed on the '" + verrs[0].Tag() + "' rule",
			}, http.StatusBadRequest)
			return false
		}
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: err.Error(),
		}, http.StatusBadRequest)
		return false
	}
	return true
}
