package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/simsparts/sims-api/internal/core/ports"
)

const defaultRetention = 30 * 24 * time.Hour

// RetentionJob periodically deletes rate-limit attempt rows older than the
// configured retention. Block-list rows and security events are kept; their
// cleanup is an operator concern.
type RetentionJob struct {
	store     ports.RateLimitStore
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
}

// NewRetentionJob creates a job pruning attempts older than retention, once
// per interval. Non-positive values fall back to 30 days / 1 hour.
func NewRetentionJob(store ports.RateLimitStore, retention, interval time.Duration, log zerolog.Logger) *RetentionJob {
	if retention <= 0 {
		retention = defaultRetention
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionJob{store: store, retention: retention, interval: interval, log: log}
}

// Start launches the prune loop in its own goroutine. It stops when ctx is
// cancelled.
func (j *RetentionJob) Start(ctx context.Context) {
	go j.run(ctx)
}

func (j *RetentionJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.prune(ctx)
		}
	}
}

func (j *RetentionJob) prune(ctx context.Context) {
	deleted, err := j.store.PruneAttempts(ctx, j.retention)
	if err != nil {
		j.log.Error().Err(err).Msg("rate-limit retention prune failed")
		return
	}
	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("pruned old rate-limit attempts")
	}
}
