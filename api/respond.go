package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
)

type errorResponse struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeError maps a classified failure to its transport status. Anything
// outside the closed kind set is a defect and is rendered as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		logger.Error("unclassified failure", slog.Any("err", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var status int
	msg := e.Error()
	switch e.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindVersionConflict:
		status = http.StatusConflict
	case apperr.KindNotAuthorized, apperr.KindPermissionDenied:
		status = http.StatusForbidden
	case apperr.KindInsufficientBalance:
		status = http.StatusPaymentRequired
	case apperr.KindFriendRequest:
		status = http.StatusBadRequest
	case apperr.KindDatabase:
		// Driver internals stay in the log, not the response.
		logger.Error("storage failure", slog.Any("err", e.Unwrap()))
		status = http.StatusInternalServerError
		msg = "storage failure"
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(w, errorResponse{Error: msg, Kind: e.Kind}, status)
}
