package ports

import (
	"context"

	"github.com/simsparts/sims-api/internal/core/authz"
	"github.com/simsparts/sims-api/internal/core/domain"
)

// TokenPair bundles the two tokens handed out on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, username, password, email string, roles []string) (*domain.User, error)
	Login(ctx context.Context, username, password, ip string) (*TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken, ip string) (*TokenPair, error)
	Permissions(roles []string) authz.Grant
}
