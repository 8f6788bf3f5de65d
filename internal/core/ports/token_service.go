package ports

import "github.com/simsparts/sims-api/internal/core/domain"

// TokenService issues and verifies the two token kinds. Verification returns
// domain.ErrInvalidToken for every expected failure mode (malformed token, bad
// signature, unparsable payload, expiry, wrong kind) so that the error cannot
// leak which check tripped.
type TokenService interface {
	IssueAccessToken(userID int64, username string, roles []string) (string, error)
	IssueRefreshToken(userID int64, username string, roles []string) (string, error)
	VerifyAccessToken(token string) (*domain.Claims, error)
	VerifyRefreshToken(token string) (*domain.Claims, error)
}
