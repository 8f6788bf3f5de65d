package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/simsparts/sims-api/internal/core/domain"
)

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
		{domain.ErrWrongTokenType, http.StatusUnauthorized, "invalid token"},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{domain.ErrIPBlocked, http.StatusForbidden, "access denied"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
		{domain.ErrSuspiciousInput, http.StatusBadRequest, "invalid request"},
		{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{errors.New("database exploded"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop(), false)
	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		want := `{"error":"` + tc.msg + `"}` + "\n"
		if rec.Body.String() != want {
			t.Fatalf("%v: body %q, want %q", tc.err, rec.Body.String(), want)
		}
	}
}

func TestHTTPErrorHandler_WrongTokenTypeIndistinguishable(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop(), false)

	render := func(err error) (int, string) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler(err, e.NewContext(req, rec))
		return rec.Code, rec.Body.String()
	}

	c1, b1 := render(domain.ErrInvalidToken)
	c2, b2 := render(domain.ErrWrongTokenType)
	if c1 != c2 || b1 != b2 {
		t.Fatalf("wrong-type response must match invalid-token response")
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop(), false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(echo.NewHTTPError(http.StatusTeapot, "short and stout"), e.NewContext(req, rec))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
}

func TestHTTPErrorHandler_DebugExposesCause(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop(), true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(errors.New("database exploded"), e.NewContext(req, rec))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"database exploded"}`+"\n" {
		t.Fatalf("debug mode must expose the cause, got %q", rec.Body.String())
	}
}
