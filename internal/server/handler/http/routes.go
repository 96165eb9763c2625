package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/qpay/securegate/internal/metrics"
	"github.com/qpay/securegate/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the payment gateway API.
//
// Routes:
//
//	GET  /health                   → liveness check
//	GET  /metrics                  → Prometheus exposition
//	POST /auth/register            → AuthHandler.Register
//	POST /auth/login               → AuthHandler.Login
//	POST /card/register            → CardHandler.Register
//	POST /card/get-mobile-number   → CardHandler.GetMobileNumber
//	POST /otp/send                 → OTPHandler.Send
//	POST /otp/verify               → OTPHandler.Verify
//	GET  /banks/list               → BankHandler.List
//	POST /transactions/process     → TransactionHandler.Process (bearer)
//	POST /fraud/check              → TransactionHandler.Check (bearer)
//
// The admission gate runs before authentication on every API route;
// /health and /metrics bypass it.
func NewRouter(
	authHandler *AuthHandler,
	cardHandler *CardHandler,
	otpHandler *OTPHandler,
	txHandler *TransactionHandler,
	gate middleware.AdmissionGate,
	verifier middleware.TokenVerifier,
	m *metrics.Metrics,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Instrument everything, including rejected requests.
	r.Use(middleware.Instrument(m))

	r.Get("/health", Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	bankHandler := &BankHandler{}

	r.Group(func(r chi.Router) {
		// Reject over-limit clients before anything else runs.
		r.Use(middleware.RateLimit(gate))
		r.Use(middleware.WithRequestLogging(logger))
		// Only allow requests with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Public endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Route("/card", func(r chi.Router) {
			r.Post("/register", cardHandler.Register)
			r.Post("/get-mobile-number", cardHandler.GetMobileNumber)
		})
		r.Route("/otp", func(r chi.Router) {
			r.Post("/send", otpHandler.Send)
			r.Post("/verify", otpHandler.Verify)
		})
		r.Get("/banks/list", bankHandler.List)

		// Protected group: requires a valid bearer token. The request
		// deadline bounds the simulated-latency and persistence steps so
		// a slow round trip cannot hold the request open indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))
			r.Use(chiMiddleware.Timeout(requestTimeout))
			r.Post("/transactions/process", txHandler.Process)
			r.Post("/fraud/check", txHandler.Check)
		})
	})

	return r
}
