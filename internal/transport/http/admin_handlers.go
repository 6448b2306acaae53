package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// AdminHandlers provides HTTP handlers for admin elevation.
type AdminHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(hub *core.Hub, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		hub: hub,
		log: logger,
	}
}

// VerifyAdminRequest represents the verify-admin request body.
type VerifyAdminRequest struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

// VerifyAdminResponse represents the verify-admin response body.
type VerifyAdminResponse struct {
	Success bool `json:"success"`
}

// Verify grants admin rights to username when code matches the admin secret.
// POST /verify-admin
func (h *AdminHandlers) Verify(c *gin.Context) {
	var req VerifyAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid verify-admin request")
		c.JSON(http.StatusBadRequest, VerifyAdminResponse{Success: false})
		return
	}

	ok, err := h.hub.VerifyAdmin(c.Request.Context(), req.Code, req.Username)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Username).Msg("failed to verify admin")
		c.JSON(http.StatusServiceUnavailable, VerifyAdminResponse{Success: false})
		return
	}
	if !ok {
		h.log.Info().Str("name", req.Username).Msg("admin verification failed")
		c.JSON(http.StatusUnauthorized, VerifyAdminResponse{Success: false})
		return
	}

	c.JSON(http.StatusOK, VerifyAdminResponse{Success: true})
}
