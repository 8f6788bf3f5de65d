package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"time"

	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/pkg/token"
)

// tokenHeader is the fixed first segment of every issued token. The field
// order is part of the wire contract: tokens must remain byte-identical to
// those produced by earlier backends so existing sessions keep working.
const tokenHeader = `{"typ":"JWT","alg":"HS256"}`

const (
	defaultAccessTTL  = 7200 * time.Second
	defaultRefreshTTL = 1209600 * time.Second // 14 days
)

// TokenService issues and verifies HS256 tokens. Access and refresh tokens
// use distinct secrets, so a refresh token can never verify against the
// access path even before its type tag is inspected.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService validates the secret configuration. Identical access and
// refresh secrets are a deployment error: they would collapse the two token
// kinds into one trust domain.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must be configured")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// IssueAccessToken builds a short-lived access token for the given identity.
func (s *TokenService) IssueAccessToken(userID int64, username string, roles []string) (string, error) {
	return s.issue(userID, username, roles, domain.TokenTypeAccess, s.accessTTL, s.accessSecret)
}

// IssueRefreshToken builds a long-lived refresh token signed with the refresh
// secret.
func (s *TokenService) IssueRefreshToken(userID int64, username string, roles []string) (string, error) {
	return s.issue(userID, username, roles, domain.TokenTypeRefresh, s.refreshTTL, s.refreshSecret)
}

// VerifyAccessToken checks signature and expiry against the access secret.
// A missing type field is accepted for compatibility with tokens issued
// before refresh tokens existed; callers needing strict access-only semantics
// must additionally reject claims with Type == "refresh".
func (s *TokenService) VerifyAccessToken(tok string) (*domain.Claims, error) {
	return s.verify(tok, s.accessSecret)
}

// VerifyRefreshToken checks signature and expiry against the refresh secret
// and requires the refresh type tag.
func (s *TokenService) VerifyRefreshToken(tok string) (*domain.Claims, error) {
	claims, err := s.verify(tok, s.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != domain.TokenTypeRefresh {
		return nil, domain.ErrWrongTokenType
	}
	return claims, nil
}

func (s *TokenService) issue(userID int64, username string, roles []string, kind string, ttl time.Duration, secret []byte) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	now := s.now().Unix()
	payload, err := json.Marshal(domain.Claims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
		Type:     kind,
		IssuedAt: now,
		Expiry:   now + int64(ttl/time.Second),
	})
	if err != nil {
		return "", err
	}

	signingInput := token.Encode([]byte(tokenHeader)) + "." + token.Encode(payload)
	return signingInput + "." + sign(signingInput, secret), nil
}

// verify collapses every expected failure into domain.ErrInvalidToken so the
// response never reveals which check failed.
func (s *TokenService) verify(tok string, secret []byte) (*domain.Claims, error) {
	header, payload, signature, err := token.Split(tok)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	expected := sign(header+"."+payload, secret)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, domain.ErrInvalidToken
	}

	raw, err := token.Decode(payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	var claims domain.Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, domain.ErrInvalidToken
	}

	// A zero exp means the field was absent; such tokens never expire.
	if claims.Expiry != 0 && claims.Expiry < s.now().Unix() {
		return nil, domain.ErrInvalidToken
	}
	return &claims, nil
}

func sign(signingInput string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return token.Encode(mac.Sum(nil))
}
