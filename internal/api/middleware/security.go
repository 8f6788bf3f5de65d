package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/simsparts/sims-api/internal/api/metrics"
	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/ports"
)

// RateLimit is a sliding-window budget: at most Max attempts within the
// trailing Window.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// GateConfig tunes the security gate. Zero values select the defaults below.
type GateConfig struct {
	Strictness   Strictness
	GeneralLimit RateLimit
	ActionLimits map[string]RateLimit
	// Actions maps route paths to rate-limit action names, e.g.
	// "/auth/login" → "login".
	Actions map[string]string
}

// DefaultActionLimits returns the per-action budgets: login 5/15min,
// register 3/hour, otp_request 5/hour.
func DefaultActionLimits() map[string]RateLimit {
	return map[string]RateLimit{
		"login":       {Max: 5, Window: 15 * time.Minute},
		"register":    {Max: 3, Window: time.Hour},
		"otp_request": {Max: 5, Window: time.Hour},
	}
}

var defaultGeneralLimit = RateLimit{Max: 100, Window: time.Hour}

// Gate is the per-request security pipeline: response-header hardening, IP
// block check, sliding-window rate limiting, suspicious-input screening,
// passive header/user-agent detection, and audit logging. Checks run in that
// order and the first failure terminates the request; nothing later runs.
//
// The gate holds no mutable state of its own. All coordination lives in the
// backing store, so one Gate instance serves arbitrary request concurrency.
type Gate struct {
	store  ports.SecurityStore
	tokens ports.TokenService
	cfg    GateConfig
	log    zerolog.Logger
}

// NewGate builds a Gate, filling unset config fields with defaults.
func NewGate(store ports.SecurityStore, tokens ports.TokenService, cfg GateConfig, log zerolog.Logger) *Gate {
	if cfg.GeneralLimit.Max <= 0 {
		cfg.GeneralLimit = defaultGeneralLimit
	}
	if cfg.ActionLimits == nil {
		cfg.ActionLimits = DefaultActionLimits()
	}
	return &Gate{store: store, tokens: tokens, cfg: cfg, log: log}
}

// Middleware returns the echo middleware running the pipeline.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			setSecurityHeaders(c)

			ctx := c.Request().Context()
			ip := ClientIP(c.Request())

			if err := g.checkIPBlock(ctx, c, ip); err != nil {
				return err
			}
			if g.cfg.Strictness == StrictnessFull {
				if err := g.checkRateLimits(ctx, c, ip); err != nil {
					return err
				}
			}
			if err := g.screenInput(ctx, c, ip); err != nil {
				return err
			}
			g.passiveChecks(ctx, c, ip)

			g.recordEvent(ctx, domain.EventAPIRequest,
				"API request: "+c.Request().Method+" "+c.Request().URL.Path,
				ip, domain.SeverityLow)

			return next(c)
		}
	}
}

// setSecurityHeaders applies the hardening header set unconditionally, before
// any check can terminate the request.
func setSecurityHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Content-Security-Policy",
		"default-src 'self'; "+
			"script-src 'self'; "+
			"style-src 'self' 'unsafe-inline'; "+
			"img-src 'self' data:; "+
			"font-src 'self' data:; "+
			"connect-src 'self'; "+
			"frame-ancestors 'none'")
	if c.Request().TLS != nil || c.Scheme() == "https" {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
}

// checkIPBlock terminates with 403 when the client address is on the block
// list. A store failure fails closed: an unverifiable block list rejects.
func (g *Gate) checkIPBlock(ctx context.Context, c echo.Context, ip string) error {
	block, err := g.store.ActiveBlock(ctx, ip)
	if err != nil {
		g.log.Error().Err(err).Str("ip", ip).Msg("block-list lookup failed")
		metrics.RequestsRejectedTotal.WithLabelValues("store_error").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "security check unavailable")
	}
	if block == nil {
		return nil
	}

	g.recordEvent(ctx, domain.EventIPBlocked, "blocked IP attempted access: "+ip, ip, domain.SeverityHigh)
	metrics.RequestsRejectedTotal.WithLabelValues("ip_blocked").Inc()
	return echo.NewHTTPError(http.StatusForbidden, "access denied")
}

// checkRateLimits enforces the general api_call budget, then the endpoint's
// own budget when the route is a configured action. The attempt that exceeds
// a budget is still recorded by the store; the log is history, not a cap.
func (g *Gate) checkRateLimits(ctx context.Context, c echo.Context, ip string) error {
	identifier := g.identifier(c, ip)

	allowed, err := g.store.Allow(ctx, identifier, "api_call", ip, g.cfg.GeneralLimit.Max, g.cfg.GeneralLimit.Window)
	if err != nil {
		g.log.Error().Err(err).Str("identifier", identifier).Msg("rate-limit check failed")
		metrics.RequestsRejectedTotal.WithLabelValues("store_error").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "security check unavailable")
	}
	if !allowed {
		g.recordEvent(ctx, domain.EventRateLimitExceeded, "API rate limit exceeded for: "+identifier, ip, domain.SeverityMedium)
		metrics.RateLimitRejectionsTotal.WithLabelValues("api_call").Inc()
		metrics.RequestsRejectedTotal.WithLabelValues("rate_limited").Inc()
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}

	action, ok := g.cfg.Actions[c.Path()]
	if !ok {
		return nil
	}
	limit, ok := g.cfg.ActionLimits[action]
	if !ok {
		return nil
	}
	allowed, err = g.store.Allow(ctx, identifier, action, ip, limit.Max, limit.Window)
	if err != nil {
		g.log.Error().Err(err).Str("identifier", identifier).Str("action", action).Msg("rate-limit check failed")
		metrics.RequestsRejectedTotal.WithLabelValues("store_error").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "security check unavailable")
	}
	if !allowed {
		g.recordEvent(ctx, domain.EventEndpointRateLimit, "Rate limit exceeded for endpoint: "+action, ip, domain.SeverityMedium)
		metrics.RateLimitRejectionsTotal.WithLabelValues(action).Inc()
		metrics.RequestsRejectedTotal.WithLabelValues("rate_limited").Inc()
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests for this endpoint")
	}
	return nil
}

// identifier keys rate-limit budgets by the authenticated username when a
// valid bearer token is present in the Authorization header, and by client IP
// otherwise.
func (g *Gate) identifier(c echo.Context, ip string) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if m := bearerPattern.FindStringSubmatch(auth); m != nil {
		if claims, err := g.tokens.VerifyAccessToken(m[1]); err == nil && claims.Username != "" {
			return claims.Username
		}
	}
	return ip
}

// screenInput matches every query parameter value against the configured
// pattern sets and terminates with 400 on a hit.
func (g *Gate) screenInput(ctx context.Context, c echo.Context, ip string) error {
	sql := g.cfg.Strictness.sqlPatterns()
	xss := g.cfg.Strictness.xssPatterns()

	for key, values := range c.QueryParams() {
		for _, value := range values {
			if matchesAny(sql, value) {
				g.recordEvent(ctx, domain.EventSQLInjectionAttempt, "SQL injection attempt in GET parameter: "+key, ip, domain.SeverityHigh)
				metrics.RequestsRejectedTotal.WithLabelValues("suspicious_input").Inc()
				return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
			}
			if matchesAny(xss, value) {
				g.recordEvent(ctx, domain.EventXSSAttempt, "XSS attempt in GET parameter: "+key, ip, domain.SeverityHigh)
				metrics.RequestsRejectedTotal.WithLabelValues("suspicious_input").Inc()
				return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
			}
		}
	}
	return nil
}

// passiveChecks logs proxy-chain tampering headers and automation user
// agents. Neither blocks.
func (g *Gate) passiveChecks(ctx context.Context, c echo.Context, ip string) {
	for _, h := range suspiciousProxyHeaders {
		if c.Request().Header.Get(h) != "" {
			g.recordEvent(ctx, domain.EventSuspiciousHeader, "Suspicious header detected: "+h, ip, domain.SeverityMedium)
		}
	}
	if ua := c.Request().UserAgent(); ua != "" && matchesAny(suspiciousUserAgents, ua) {
		g.recordEvent(ctx, domain.EventSuspiciousUserAgent, "Suspicious user agent: "+ua, ip, domain.SeverityMedium)
	}
}

// recordEvent writes a security event best effort. A failed write is logged
// and otherwise invisible to the request.
func (g *Gate) recordEvent(ctx context.Context, event, details, ip, severity string) {
	metrics.SecurityEventsTotal.WithLabelValues(event, severity).Inc()
	e := domain.SecurityEvent{
		Event:     event,
		Details:   details,
		IPAddress: ip,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.store.RecordEvent(ctx, e); err != nil {
		g.log.Warn().Err(err).Str("event", event).Msg("security event write failed")
	}
}
