package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/simsparts/sims-api/internal/core/domain"
	"github.com/simsparts/sims-api/internal/core/ports"
)

// SecurityHandler exposes admin-only block-list management.
type SecurityHandler struct {
	store ports.SecurityStore
	log   zerolog.Logger
}

func NewSecurityHandler(store ports.SecurityStore, log zerolog.Logger) *SecurityHandler {
	return &SecurityHandler{store: store, log: log}
}

type blockRequest struct {
	IPAddress string `json:"ip_address" validate:"required,ip"`
	Reason    string `json:"reason" validate:"required"`
	// DurationMinutes of 0 means a permanent block.
	DurationMinutes int `json:"duration_minutes" validate:"gte=0"`
}

type blockResponse struct {
	IPAddress string     `json:"ip_address"`
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Block adds or refreshes an IP block.
//
// @Summary      Block an IP address
// @Tags         security
// @Accept       json
// @Produce      json
// @Param        body  body      blockRequest  true  "Block details"
// @Success      201   {object}  blockResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /admin/security/blocks [post]
// @Security     BearerAuth
func (h *SecurityHandler) Block(c echo.Context) error {
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var expiresAt *time.Time
	if req.DurationMinutes > 0 {
		t := time.Now().UTC().Add(time.Duration(req.DurationMinutes) * time.Minute)
		expiresAt = &t
	}

	ctx := c.Request().Context()
	if err := h.store.Block(ctx, req.IPAddress, req.Reason, expiresAt); err != nil {
		h.log.Error().Err(err).Str("ip", req.IPAddress).Msg("block write failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	event := domain.SecurityEvent{
		Event:     domain.EventIPBlockAdded,
		Details:   "IP block added by admin: " + req.IPAddress + " (" + req.Reason + ")",
		IPAddress: clientIP(c),
		Severity:  domain.SeverityMedium,
		CreatedAt: time.Now().UTC(),
	}
	if claims, err := ctxClaims(c); err == nil {
		event.UserID = &claims.UserID
	}
	if err := h.store.RecordEvent(ctx, event); err != nil {
		h.log.Warn().Err(err).Str("ip", req.IPAddress).Msg("block audit event write failed")
	}

	return c.JSON(http.StatusCreated, blockResponse{
		IPAddress: req.IPAddress,
		Reason:    req.Reason,
		ExpiresAt: expiresAt,
	})
}
