package middleware

import (
	"github.com/justinas/alice"
	"go.uber.org/zap"
)

// ChainConfig selects the optional layers of the standard chain
type ChainConfig struct {
	Development bool
	RateLimiter *RateLimiter // nil disables rate limiting
}

// Standard returns the middleware chain applied to every public route:
// request ID, panic recovery, security headers, then rate limiting.
func Standard(cfg ChainConfig, logger *zap.Logger) alice.Chain {
	chain := alice.New(RequestID, Recover(logger), NewSecurityHeaders(cfg.Development).Middleware)
	if cfg.RateLimiter != nil {
		chain = chain.Append(cfg.RateLimiter.Middleware)
	}
	return chain
}
