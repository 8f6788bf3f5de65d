package ports

import (
	"context"
	"time"

	"github.com/simsparts/sims-api/internal/core/domain"
)

// RateLimitStore tracks attempts against a sliding window. Allow atomically
// counts the rows recorded for (identifier, action) within the trailing window
// and appends the current attempt, returning whether the attempt was still
// under max. The attempt that exceeds the budget is recorded anyway: the log
// is authoritative history, not a hard cap.
type RateLimitStore interface {
	Allow(ctx context.Context, identifier, action, ip string, max int, window time.Duration) (bool, error)
	PruneAttempts(ctx context.Context, olderThan time.Duration) (int64, error)
}

// BlockStore answers and maintains the IP block list. ActiveBlock returns nil
// when the address is not blocked or its block has expired. Block upserts:
// re-blocking an address refreshes reason and expiry instead of adding a row.
type BlockStore interface {
	ActiveBlock(ctx context.Context, ip string) (*domain.BlockedIP, error)
	Block(ctx context.Context, ip, reason string, expiresAt *time.Time) error
}

// EventStore appends security events. Writes are best effort; a failure must
// never propagate into the request outcome.
type EventStore interface {
	RecordEvent(ctx context.Context, event domain.SecurityEvent) error
}

// SecurityStore is the full persistence surface required by the request gate.
type SecurityStore interface {
	RateLimitStore
	BlockStore
	EventStore
}
