package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// AdmissionGate decides whether a request from a client is admitted.
type AdmissionGate interface {
	Admit(clientID string) (admitted bool, retryAfter time.Duration)
}

// RateLimit rejects over-limit clients with 429 before any other
// processing. It keys on the client network address, so it runs ahead
// of authentication and never depends on identity resolution.
func RateLimit(gate AdmissionGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admitted, retryAfter := gate.Admit(clientAddr(r))
			if !admitted {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Slow down!",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr extracts the client host from the remote address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
