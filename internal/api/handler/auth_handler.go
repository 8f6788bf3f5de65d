package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Password string   `json:"password" validate:"required,min=8"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	Token        string       `json:"token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email, req.Roles)
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case domain.ErrUserExists:
			status = http.StatusConflict
		case domain.ErrInvalidCredentials:
			status = http.StatusBadRequest
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	pair, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, clientIP(c))
	if err != nil {
		// Unknown user and wrong password read identically to the caller.
		if err == domain.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, authResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

// Refresh rotates a refresh token into a fresh token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken, clientIP(c))
	if err != nil {
		switch err {
		case domain.ErrInvalidToken, domain.ErrWrongTokenType, domain.ErrUserNotFound:
			// All refresh failures collapse to one answer; the caller learns
			// nothing about which check failed.
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, authResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type meResponse struct {
	UserID      int64               `json:"user_id"`
	Username    string              `json:"username"`
	Roles       []string            `json:"roles"`
	Permissions map[string][]string `json:"permissions"`
	FullAccess  bool                `json:"full_access"`
}

// Me returns the authenticated caller's identity and effective permissions.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	grant := h.authService.Permissions(claims.Roles)
	return c.JSON(http.StatusOK, meResponse{
		UserID:      claims.UserID,
		Username:    claims.Username,
		Roles:       claims.Roles,
		Permissions: grant.Resources,
		FullAccess:  grant.All,
	})
}
