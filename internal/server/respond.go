package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zombor/shopping-tracker/internal/ledger"
	"github.com/zombor/shopping-tracker/internal/scanning"
	"github.com/zombor/shopping-tracker/internal/shopping"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// writeServiceError maps domain errors to status codes
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shopping.ErrListNotFound), errors.Is(err, shopping.ErrItemNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrIndexOutOfRange):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, shopping.ErrEmptyName),
		errors.Is(err, shopping.ErrInvalidItem),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, scanning.ErrInvalidPrice):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("Request failed", "op", op, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
	}
}
