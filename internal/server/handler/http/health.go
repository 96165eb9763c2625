package http

import (
	"net/http"
	"time"
)

// Health reports service liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"timestamp": time.Now().UTC(),
	})
}
