package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/simsparts/sims-api/internal/core/domain"
)

type stubSecurityStore struct {
	blocked  map[string]*time.Time
	events   []domain.SecurityEvent
	blockErr error
	eventErr error
}

func newStubSecurityStore() *stubSecurityStore {
	return &stubSecurityStore{blocked: make(map[string]*time.Time)}
}

func (s *stubSecurityStore) Allow(context.Context, string, string, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (s *stubSecurityStore) PruneAttempts(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (s *stubSecurityStore) ActiveBlock(context.Context, string) (*domain.BlockedIP, error) {
	return nil, nil
}

func (s *stubSecurityStore) Block(_ context.Context, ip, reason string, expiresAt *time.Time) error {
	if s.blockErr != nil {
		return s.blockErr
	}
	s.blocked[ip] = expiresAt
	return nil
}

func (s *stubSecurityStore) RecordEvent(_ context.Context, e domain.SecurityEvent) error {
	if s.eventErr != nil {
		return s.eventErr
	}
	s.events = append(s.events, e)
	return nil
}

func TestSecurityHandler_Block_Success(t *testing.T) {
	store := newStubSecurityStore()
	handler := NewSecurityHandler(store, zerolog.Nop())

	c, rec := jsonContext(t, http.MethodPost, "/admin/security/blocks",
		`{"ip_address":"203.0.113.9","reason":"credential stuffing","duration_minutes":60}`)
	c.Set("claims", &domain.Claims{UserID: 1, Username: "root", Roles: []string{domain.RoleSuperAdmin}})

	if err := handler.Block(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	expires, ok := store.blocked["203.0.113.9"]
	if !ok {
		t.Fatalf("block not written")
	}
	if expires == nil {
		t.Fatalf("timed block must carry an expiry")
	}

	if len(store.events) != 1 || store.events[0].Event != domain.EventIPBlockAdded {
		t.Fatalf("block audit event missing: %+v", store.events)
	}
	if store.events[0].UserID == nil || *store.events[0].UserID != 1 {
		t.Fatalf("audit event must carry the acting admin")
	}
}

func TestSecurityHandler_Block_Permanent(t *testing.T) {
	store := newStubSecurityStore()
	handler := NewSecurityHandler(store, zerolog.Nop())

	c, rec := jsonContext(t, http.MethodPost, "/admin/security/blocks",
		`{"ip_address":"203.0.113.9","reason":"abuse"}`)

	if err := handler.Block(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if expires := store.blocked["203.0.113.9"]; expires != nil {
		t.Fatalf("zero duration must mean a permanent block")
	}
}

func TestSecurityHandler_Block_InvalidIP(t *testing.T) {
	store := newStubSecurityStore()
	handler := NewSecurityHandler(store, zerolog.Nop())

	c, rec := jsonContext(t, http.MethodPost, "/admin/security/blocks",
		`{"ip_address":"not-an-ip","reason":"abuse"}`)

	_ = handler.Block(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(store.blocked) != 0 {
		t.Fatalf("invalid payload must not write a block")
	}
}

func TestSecurityHandler_Block_StoreError(t *testing.T) {
	store := newStubSecurityStore()
	store.blockErr = context.DeadlineExceeded
	handler := NewSecurityHandler(store, zerolog.Nop())

	c, rec := jsonContext(t, http.MethodPost, "/admin/security/blocks",
		`{"ip_address":"203.0.113.9","reason":"abuse"}`)

	_ = handler.Block(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestSecurityHandler_Block_EventWriteFailureStillBlocks(t *testing.T) {
	store := newStubSecurityStore()
	store.eventErr = context.DeadlineExceeded
	handler := NewSecurityHandler(store, zerolog.Nop())

	c, rec := jsonContext(t, http.MethodPost, "/admin/security/blocks",
		`{"ip_address":"203.0.113.9","reason":"abuse"}`)

	if err := handler.Block(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("audit failure must not fail the block, got %d", rec.Code)
	}
	if _, ok := store.blocked["203.0.113.9"]; !ok {
		t.Fatalf("block not written")
	}
}
