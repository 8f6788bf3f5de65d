package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/service"
)

const (
	mwAccessSecret  = "mw-access-secret"
	mwRefreshSecret = "mw-refresh-secret"
)

func newMiddlewareTokenService(t *testing.T) *service.TokenService {
	t.Helper()
	svc, err := service.NewTokenService(mwAccessSecret, mwRefreshSecret, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	tokens := newMiddlewareTokenService(t)
	signed, err := tokens.IssueAccessToken(42, "alice", []string{domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(tokens)
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get("username") != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get("user_id") != int64(42) {
			t.Fatalf("user_id not set")
		}
		roles, _ := c.Get("roles").([]string)
		if len(roles) != 1 || roles[0] != domain.RoleAdmin {
			t.Fatalf("roles not set: %v", roles)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(newMiddlewareTokenService(t))
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(newMiddlewareTokenService(t))
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	e := echo.New()
	tokens := newMiddlewareTokenService(t)
	refresh, err := tokens.IssueRefreshToken(42, "alice", []string{domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(tokens)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("refresh token must not authenticate a request")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_TokenFromCookie(t *testing.T) {
	e := echo.New()
	tokens := newMiddlewareTokenService(t)
	signed, _ := tokens.IssueAccessToken(7, "bob", []string{domain.RoleClient})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signed})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("cookie token not accepted")
	}
}
