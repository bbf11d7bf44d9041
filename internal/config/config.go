package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/gopherfood/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string
	LogLevel    string

	StripeAPIKey        string
	StripeWebhookSecret string
	PaymentSuccessURL   string
	PaymentCancelURL    string
	Currency            string

	AMQPURL      string
	AMQPExchange string

	SMTPAddr     string
	SMTPFrom     string
	SMTPUser     string
	SMTPPassword string

	PointsPerCurrencyUnit int64
	LoyaltyTiers          []model.LoyaltyTier

	PendingOrderTTL time.Duration
	SweepInterval   time.Duration
	SweepBatch      int
	WorkerPoolSize  int
	ShutdownTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

const (
	defaultRunAddress            = ":8080"
	defaultJWTSecret             = "change-me-in-production"
	defaultLogLevel              = "info"
	defaultPaymentSuccessURL     = "http://localhost:8080/payment/success"
	defaultPaymentCancelURL      = "http://localhost:8080/payment/cancel"
	defaultCurrency              = "vnd"
	defaultAMQPExchange          = "gopherfood.orders"
	defaultPointsPerCurrencyUnit = 10000
	defaultPendingOrderTTL       = 30 * time.Minute
	defaultSweepInterval         = time.Minute
	defaultSweepBatch            = 32
	defaultWorkerPoolSize        = 4
	defaultShutdownTimeout       = 10 * time.Second
	defaultRateLimitRPS          = 10
	defaultRateLimitBurst        = 20
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		LogLevel:              getString(lookup, "LOG_LEVEL", defaultLogLevel),
		StripeAPIKey:          getString(lookup, "STRIPE_API_KEY", ""),
		StripeWebhookSecret:   getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		PaymentSuccessURL:     getString(lookup, "PAYMENT_SUCCESS_URL", defaultPaymentSuccessURL),
		PaymentCancelURL:      getString(lookup, "PAYMENT_CANCEL_URL", defaultPaymentCancelURL),
		Currency:              getString(lookup, "CURRENCY", defaultCurrency),
		AMQPURL:               getString(lookup, "AMQP_URL", ""),
		AMQPExchange:          getString(lookup, "AMQP_EXCHANGE", defaultAMQPExchange),
		SMTPAddr:              getString(lookup, "SMTP_ADDR", ""),
		SMTPFrom:              getString(lookup, "SMTP_FROM", ""),
		SMTPUser:              getString(lookup, "SMTP_USER", ""),
		SMTPPassword:          getString(lookup, "SMTP_PASSWORD", ""),
		PointsPerCurrencyUnit: int64(getInt(lookup, "POINTS_PER_CURRENCY_UNIT", defaultPointsPerCurrencyUnit)),
		PendingOrderTTL:       getDuration(lookup, "PENDING_ORDER_TTL", defaultPendingOrderTTL),
		SweepInterval:         getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepBatch:            getInt(lookup, "SWEEP_BATCH", defaultSweepBatch),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		RateLimitRPS:          getFloat(lookup, "RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst:        getInt(lookup, "RATE_LIMIT_BURST", defaultRateLimitBurst),
	}

	fs := flag.NewFlagSet("gopherfood", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pendingTTLStr      = cfg.PendingOrderTTL.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		tiersFile          = getString(lookup, "LOYALTY_TIERS_FILE", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying auth tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL for order events")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "Checkout currency")
	fs.StringVar(&tiersFile, "loyalty-tiers", tiersFile, "YAML file with loyalty tiers")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent sweeper workers")
	fs.IntVar(&cfg.SweepBatch, "sweep-batch", cfg.SweepBatch, "Maximum stale orders per sweep")
	fs.StringVar(&pendingTTLStr, "pending-ttl", pendingTTLStr, "Age after which unpaid online orders are cancelled")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between stale order sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PendingOrderTTL, err = time.ParseDuration(pendingTTLStr); err != nil {
		return nil, fmt.Errorf("invalid pending order ttl: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.JWTSecret, err = fromFile(lookup, "JWT_SECRET_FILE", cfg.JWTSecret); err != nil {
		return nil, fmt.Errorf("read jwt secret file: %w", err)
	}

	if cfg.StripeWebhookSecret, err = fromFile(lookup, "STRIPE_WEBHOOK_SECRET_FILE", cfg.StripeWebhookSecret); err != nil {
		return nil, fmt.Errorf("read webhook secret file: %w", err)
	}

	if tiersFile != "" {
		if cfg.LoyaltyTiers, err = LoadLoyaltyTiers(tiersFile); err != nil {
			return nil, err
		}
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = defaultSweepBatch
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.PendingOrderTTL <= 0 {
		cfg.PendingOrderTTL = defaultPendingOrderTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.PointsPerCurrencyUnit <= 0 {
		cfg.PointsPerCurrencyUnit = defaultPointsPerCurrencyUnit
	}

	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = defaultRateLimitRPS
	}

	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}

	cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.StripeAPIKey != "" && cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret must be provided with an api key")
	}

	return cfg, nil
}

func fromFile(lookup envLookup, key, current string) (string, error) {
	path, ok := lookup(key)
	if !ok || path == "" {
		return current, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
