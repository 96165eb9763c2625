// Package config provides application configuration from environment
// variables, with command-line flags overriding the listen address and
// database DSN.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the full configuration surface of the service.
type Config struct {
	// Address is the server's listening address (ip:port).
	Address string `env:"ADDRESS" envDefault:"localhost:8000"`

	// LogLevel is the zap logging level.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Database  Database  `envPrefix:"DATABASE_"`
	TLS       TLS       `envPrefix:"TLS_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
	OTP       OTP       `envPrefix:"OTP_"`
	Payment   Payment   `envPrefix:"PAYMENT_"`
}

// Database contains database connection parameters.
type Database struct {
	DSN string `env:"DSN"`
}

// TLS contains the server certificate parameters. When both paths are
// set the server serves HTTPS; otherwise it serves plain HTTP.
type TLS struct {
	CertFile string `env:"CERT_FILE"`
	KeyFile  string `env:"KEY_FILE"`
}

// Auth contains session-token parameters.
type Auth struct {
	// Secret is the process-wide HMAC signing secret.
	Secret string `env:"SECRET" envDefault:"supersecurekey"`
	// TokenTTL bounds token validity from issuance.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"30m"`
}

// RateLimit contains admission-control parameters.
type RateLimit struct {
	// Limit is the number of requests admitted per client per window.
	Limit int `env:"LIMIT" envDefault:"30"`
	// Window is the trailing horizon requests are counted within.
	Window time.Duration `env:"WINDOW" envDefault:"60s"`
	// SweepInterval is how often idle client windows are dropped.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

// OTP contains step-up verification parameters.
type OTP struct {
	TTL      time.Duration `env:"TTL" envDefault:"5m"`
	Cooldown time.Duration `env:"COOLDOWN" envDefault:"60s"`
}

// Payment contains orchestrator and simulated-processor parameters.
type Payment struct {
	// HighRiskCeiling is the amount above which transactions require
	// manual verification, independent of the fraud engine.
	HighRiskCeiling float64 `env:"HIGH_RISK_CEILING" envDefault:"100000"`
	// MinLatency and MaxLatency bound the simulated network round trip.
	MinLatency time.Duration `env:"MIN_LATENCY" envDefault:"3s"`
	MaxLatency time.Duration `env:"MAX_LATENCY" envDefault:"7s"`
	// FailureRate is the simulated network failure probability.
	FailureRate float64 `env:"FAILURE_RATE" envDefault:"0.2"`
	// RequestTimeout bounds one transaction request end to end.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Parse loads configuration from environment variables and then applies
// command-line flag overrides. Intended for the server entry point only.
func Parse() (*Config, error) {
	cfg, err := New()
	if err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.Address, "a", cfg.Address, "run on ip:port server")
	flag.StringVar(&cfg.Database.DSN, "d", cfg.Database.DSN, "db address")
	flag.Parse()

	return cfg, nil
}
