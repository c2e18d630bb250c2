// internal/app/system/respond/respond.go

// Package respond writes JSON API responses. All handlers go through
// these helpers so error bodies stay uniform.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v with the given status. Encoding failures are swallowed;
// by the time Encode fails the status line is already on the wire.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body: {"error": "..."}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// NoContent writes 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
