// Package main initializes and starts the payment gateway server,
// wiring configuration, logging, persistence, the security components
// and the HTTP routes.
package main

import (
	"context"
	"log"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/qpay/securegate/internal/config"
	"github.com/qpay/securegate/internal/db"
	"github.com/qpay/securegate/internal/fraud"
	"github.com/qpay/securegate/internal/ledger"
	"github.com/qpay/securegate/internal/logger"
	"github.com/qpay/securegate/internal/metrics"
	"github.com/qpay/securegate/internal/otp"
	"github.com/qpay/securegate/internal/processor"
	"github.com/qpay/securegate/internal/ratelimit"
	"github.com/qpay/securegate/internal/repository"
	"github.com/qpay/securegate/internal/server/handler/http"
	"github.com/qpay/securegate/internal/service"
	"github.com/qpay/securegate/internal/sms"
	"github.com/qpay/securegate/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse environment and command-line configuration.
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	// Initialize structured logging.
	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting payment gateway",
		zap.String("version", orNA(version)),
		zap.String("build_date", orNA(buildDate)),
	)

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(cfg.Database.DSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	ctx := context.Background()

	// Sweep abandoned OTP challenges so the table stays bounded.
	db.StartChallengeCleaner(ctx, postgresDB, cfg.OTP.TTL, cfg.OTP.TTL, zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	cardRepo := repository.NewPostgresCardRepository(postgresDB)
	txRepo := repository.NewPostgresTransactionRepository(postgresDB)
	fraudRepo := repository.NewPostgresFraudLogRepository(postgresDB)
	challengeStore := repository.NewPostgresChallengeStore(postgresDB)

	// Initialize the security components.
	authority := token.NewAuthority(cfg.Auth.Secret, cfg.Auth.TokenTTL, userRepo)

	gate := ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	gate.StartSweeper(ctx, cfg.RateLimit.SweepInterval, zapLogger)

	challengeManager := otp.NewManager(
		challengeStore,
		sms.NewSimDispatcher(zapLogger),
		cfg.OTP.TTL,
		cfg.OTP.Cooldown,
		zapLogger,
	)

	engine := fraud.NewEngine(fraud.NewNearestNeighbor())

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, authority, zapLogger)
	cardService := service.NewCardService(cardRepo, zapLogger)
	otpService := service.NewOTPService(cardService, challengeManager)
	paymentService := service.NewPaymentService(
		txRepo,
		fraudRepo,
		engine,
		processor.NewSimulated(cfg.Payment.MinLatency, cfg.Payment.MaxLatency, cfg.Payment.FailureRate),
		ledger.NewStub(zapLogger),
		cfg.Payment.HighRiskCeiling,
		zapLogger,
	)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	cardHandler := &http.CardHandler{CardService: cardService}
	otpHandler := &http.OTPHandler{OTPService: otpService}
	txHandler := &http.TransactionHandler{PaymentService: paymentService}

	// Build the router with middleware and routes.
	router := http.NewRouter(
		authHandler,
		cardHandler,
		otpHandler,
		txHandler,
		gate,
		authority,
		metrics.New(),
		cfg.Payment.RequestTimeout,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", cfg.Address))
		if err := server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile); err != nil {
			zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
		}
		return
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", cfg.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
