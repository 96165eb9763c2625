// Package http provides the HTTP handlers and routing of the payment
// gateway API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qpay/securegate/internal/errs"
)

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a domain error into its HTTP status and a JSON
// error body. Errors outside the taxonomy map to 500 with a generic
// message so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)

	body := map[string]any{"error": "internal error"}
	var de *errs.Error
	if errors.As(err, &de) && status != http.StatusInternalServerError {
		body["error"] = de.Message
		if len(de.Reasons) > 0 {
			body["reasons"] = de.Reasons
		}
	} else if errors.As(err, &de) {
		body["error"] = de.Message
	}

	writeJSON(w, status, body)
}
