package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/ports"
)

// SecurityStore persists rate-limit attempts, the IP block list, and the
// security audit log in Postgres.
type SecurityStore struct {
	db *sql.DB
}

var _ ports.SecurityStore = (*SecurityStore)(nil)

func NewSecurityStore(db *sql.DB) *SecurityStore {
	return &SecurityStore{db: db}
}

// Allow counts the attempts recorded for (identifier, action) inside the
// trailing window and appends the current attempt in the same transaction, so
// concurrent requests cannot both read a stale count and sneak past the
// budget. The over-budget attempt is recorded too.
func (s *SecurityStore) Allow(ctx context.Context, identifier, action, ip string, max int, window time.Duration) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin rate-limit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cutoff := time.Now().UTC().Add(-window)
	var count int
	err = tx.QueryRowContext(ctx, `
		select count(*) from login_attempts
		where identifier = $1 and action = $2 and attempted_at > $3
	`, identifier, action, cutoff).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count attempts: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		insert into login_attempts(identifier, action, ip_address, attempted_at)
		values ($1, $2, $3, now())
	`, identifier, action, ip); err != nil {
		return false, fmt.Errorf("record attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit rate-limit tx: %w", err)
	}
	return count < max, nil
}

// PruneAttempts deletes attempt rows older than the retention horizon.
func (s *SecurityStore) PruneAttempts(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `delete from login_attempts where attempted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return res.RowsAffected()
}

// ActiveBlock returns the current block for ip, or nil when the address is not
// blocked or its block has expired. Expired rows are left in place for audit.
func (s *SecurityStore) ActiveBlock(ctx context.Context, ip string) (*domain.BlockedIP, error) {
	var b domain.BlockedIP
	err := s.db.QueryRowContext(ctx, `
		select ip_address, reason, expires_at, created_at from blocked_ips
		where ip_address = $1 and (expires_at is null or expires_at > now())
	`, ip).Scan(&b.IPAddress, &b.Reason, &b.ExpiresAt, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup block: %w", err)
	}
	return &b, nil
}

// Block upserts an IP block; re-blocking refreshes reason and expiry.
func (s *SecurityStore) Block(ctx context.Context, ip, reason string, expiresAt *time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		insert into blocked_ips(ip_address, reason, expires_at, created_at)
		values ($1, $2, $3, now())
		on conflict (ip_address) do update
		set reason = excluded.reason, expires_at = excluded.expires_at
	`, ip, reason, expiresAt)
	if err != nil {
		return fmt.Errorf("block ip: %w", err)
	}
	return nil
}

// RecordEvent appends one row to the security audit log.
func (s *SecurityStore) RecordEvent(ctx context.Context, e domain.SecurityEvent) error {
	_, err := s.db.ExecContext(ctx, `
		insert into security_logs(event, details, user_id, ip_address, severity, created_at)
		values ($1, $2, $3, $4, $5, $6)
	`, e.Event, e.Details, e.UserID, e.IPAddress, e.Severity, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}
