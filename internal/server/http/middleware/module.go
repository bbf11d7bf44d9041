package middleware

import (
	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/config"
)

// Module provides the shared request rate limiter.
var Module = fx.Provide(newRateLimiter)

func newRateLimiter(cfg *config.Config) *RateLimiter {
	return NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}
