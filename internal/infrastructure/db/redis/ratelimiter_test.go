package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
)

const limiterWindow = 15 * time.Minute

func newMockLimiter(t *testing.T, now time.Time) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = client.Close() })
	rl := NewRateLimiter(client)
	rl.now = func() time.Time { return now }
	return rl, mock
}

func expectWindowOps(mock redismock.ClientMock, key string, now time.Time, surviving int64) {
	cutoff := strconv.FormatInt(now.Add(-limiterWindow).UnixNano(), 10)
	member := strconv.FormatInt(now.UnixNano(), 10)

	mock.ExpectTxPipeline()
	mock.ExpectZRemRangeByScore(key, "0", cutoff).SetVal(0)
	mock.ExpectZCard(key).SetVal(surviving)
	mock.ExpectZAdd(key, redis.Z{Score: float64(now.UnixNano()), Member: member}).SetVal(1)
	mock.ExpectExpire(key, limiterWindow).SetVal(true)
	mock.ExpectTxPipelineExec()
}

func TestRateLimiter_Allow_UnderBudget(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl, mock := newMockLimiter(t, now)

	expectWindowOps(mock, "ratelimit:alice:login", now, 2)

	allowed, err := rl.Allow(context.Background(), "alice", "login", "203.0.113.9", 5, limiterWindow)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed with 2 of 5 attempts in the window")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRateLimiter_Allow_OverBudgetStillRecords(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl, mock := newMockLimiter(t, now)

	// Five attempts already survive the trim; the sixth is denied but its
	// ZADD still runs inside the same pipeline.
	expectWindowOps(mock, "ratelimit:alice:login", now, 5)

	allowed, err := rl.Allow(context.Background(), "alice", "login", "203.0.113.9", 5, limiterWindow)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if allowed {
		t.Fatalf("6th attempt against a budget of 5 must be denied")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("the denied attempt must still be recorded: %v", err)
	}
}

func TestRateLimiter_Allow_ExpiredAttemptsTrimmed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl, mock := newMockLimiter(t, now)

	// The trim runs strictly before the count: ZCard sees only entries
	// younger than the window, so a budget that was exhausted fifteen
	// minutes ago is full again.
	expectWindowOps(mock, "ratelimit:alice:login", now, 0)

	allowed, err := rl.Allow(context.Background(), "alice", "login", "203.0.113.9", 5, limiterWindow)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed after the window emptied")
	}
}

func TestRateLimiter_Allow_PipelineError(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl, mock := newMockLimiter(t, now)

	cutoff := strconv.FormatInt(now.Add(-limiterWindow).UnixNano(), 10)
	mock.ExpectTxPipeline()
	mock.ExpectZRemRangeByScore("ratelimit:alice:login", "0", cutoff).
		SetErr(errors.New("connection refused"))

	allowed, err := rl.Allow(context.Background(), "alice", "login", "203.0.113.9", 5, limiterWindow)
	if err == nil {
		t.Fatalf("expected pipeline error to surface")
	}
	if allowed {
		t.Fatalf("a failed check must not report allowed")
	}
}

func TestRateLimiter_PruneAttemptsIsNoOp(t *testing.T) {
	client, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = client.Close() })
	rl := NewRateLimiter(client)

	deleted, err := rl.PruneAttempts(context.Background(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneAttempts: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}
	// No commands may reach Redis: window keys expire on their own.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected commands: %v", err)
	}
}
