package domain

import "time"

// Severity levels for security events.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Well-known security event names written by the request gate.
const (
	EventAPIRequest          = "api_request"
	EventIPBlocked           = "ip_blocked"
	EventRateLimitExceeded   = "rate_limit_exceeded"
	EventEndpointRateLimit   = "endpoint_rate_limit_exceeded"
	EventSQLInjectionAttempt = "sql_injection_attempt"
	EventXSSAttempt          = "xss_attempt"
	EventSuspiciousHeader    = "suspicious_header"
	EventSuspiciousUserAgent = "suspicious_user_agent"
	EventLoginFailed         = "login_failed"
	EventLoginSucceeded      = "login_succeeded"
	EventTokenRefreshed      = "token_refreshed"
	EventIPBlockAdded        = "ip_block_added"
)

// BlockedIP is a block-list row. A nil ExpiresAt blocks indefinitely.
// Re-blocking the same address overwrites reason and expiry in place.
type BlockedIP struct {
	IPAddress string     `json:"ip_address"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SecurityEvent is an append-only audit record. The core only ever writes
// these; retention and analysis happen elsewhere.
type SecurityEvent struct {
	Event     string    `json:"event"`
	Details   string    `json:"details"`
	UserID    *int64    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}
