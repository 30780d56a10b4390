package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shipkia/connector/internal/infrastructure/auth"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
	"github.com/shipkia/connector/internal/interfaces/http/middleware"
)

// TokenRevoker rejects an admin token before it expires
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

var _ TokenRevoker = (*auth.JWTService)(nil)

// AuthHandler handles admin session endpoints
type AuthHandler struct {
	BaseHandler
	revoker TokenRevoker
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// SessionResponse describes the admin behind the current token
type SessionResponse struct {
	AdminID     string    `json:"admin_id"`
	Username    string    `json:"username,omitempty"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Me godoc
// @Summary      Current admin session
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	resp := SessionResponse{
		AdminID:     claims.Subject,
		Username:    claims.Username,
		Permissions: claims.Permissions,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Revoke the current admin token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.ResultResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ResultResponse{Success: true, Message: "Logged out"})
}
