package api

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/sensifinder/sensifinder-server/internal/errors"
)

// writeLimit is a huma middleware that rate limits write operations by client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) writeLimit(ctx huma.Context, next func(huma.Context)) {
	if s.opts.WriteLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx)
	if !s.opts.WriteLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, 429, "too many requests",
			domainerrors.RateLimited("Too many requests. Please try again later."))
		return
	}

	next(ctx)
}

// writeMiddlewares is attached to every operation that changes state.
func (s *Server) writeMiddlewares() huma.Middlewares {
	return huma.Middlewares{s.writeLimit}
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(ctx huma.Context) string {
	// First entry of X-Forwarded-For is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
