package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/simsparts/sims-api/internal/core/authz"
	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/ports"
)

// AuthService implements registration, login with token-pair issuance, and
// refresh-token rotation.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	events ports.EventStore
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, events ports.EventStore, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, events: events, log: log}
}

// Register creates a new user account. Unspecified roles default to Client;
// unknown role names are rejected.
func (s *AuthService) Register(ctx context.Context, username, password, email string, roles []string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(roles) == 0 {
		roles = []string{domain.RoleClient}
	}
	for _, r := range roles {
		switch r {
		case domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleEmployee, domain.RoleClient:
		default:
			return nil, domain.ErrInvalidCredentials
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, user)
}

// Login validates credentials and issues an access/refresh token pair.
// Outcome events are written best effort; a dead event store never fails a
// login.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*ports.TokenPair, *domain.User, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.recordEvent(ctx, domain.EventLoginFailed, "login failed for unknown user: "+username, nil, ip, domain.SeverityMedium)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordEvent(ctx, domain.EventLoginFailed, "login failed for user: "+username, &user.ID, ip, domain.SeverityMedium)
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.recordEvent(ctx, domain.EventLoginSucceeded, "login succeeded for user: "+username, &user.ID, ip, domain.SeverityLow)
	return pair, user, nil
}

// Refresh rotates a token pair. The refresh token is verified against the
// refresh secret and type tag; identity and roles are re-read from the user
// store so role changes take effect on rotation rather than only at login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (*ports.TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, domain.EventTokenRefreshed, "token pair rotated for user: "+user.Username, &user.ID, ip, domain.SeverityLow)
	return pair, nil
}

// Permissions returns the merged grant for a role list.
func (s *AuthService) Permissions(roles []string) authz.Grant {
	return authz.PermissionsFor(roles)
}

func (s *AuthService) issuePair(user *domain.User) (*ports.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Username, user.Roles)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID, user.Username, user.Roles)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) recordEvent(ctx context.Context, event, details string, userID *int64, ip, severity string) {
	if s.events == nil {
		return
	}
	e := domain.SecurityEvent{
		Event:     event,
		Details:   details,
		UserID:    userID,
		IPAddress: ip,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.RecordEvent(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("security event write failed")
	}
}
