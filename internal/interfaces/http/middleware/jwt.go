package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/shared"
	"github.com/shipkia/connector/internal/infrastructure/auth"
	"github.com/shipkia/connector/internal/infrastructure/logger"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
)

// Admin context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AdminIDKey    = "admin_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates admin bearer tokens
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

var _ TokenValidator = (*auth.JWTService)(nil)

// AdminAuth requires a valid admin bearer token carrying manage_options
func AdminAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortAuth(c, log, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required", nil)
			return
		}

		claims, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			code, message := authErrorCode(err)
			abortAuth(c, log, dto.GetHTTPStatus(code), code, message, err)
			return
		}

		if !claims.HasPermission(auth.PermissionManageOptions) {
			abortAuth(c, log, http.StatusForbidden, dto.ErrCodeForbidden,
				"Sorry, you are not allowed to manage these settings", nil)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(AdminIDKey, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithAdminID(c.Request.Context(), claims.Subject))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func authErrorCode(err error) (string, string) {
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr) && domainErr.Code == shared.CodeUnavailable:
		return dto.ErrCodeUnavailable, "Authentication is temporarily unavailable"
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Token is not yet valid"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
}

func abortAuth(c *gin.Context, log *zap.Logger, status int, code, message string, err error) {
	fields := []zap.Field{
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log.Warn("Admin authentication failed", fields...)

	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetJWTClaims retrieves the admin claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetAdminID retrieves the authenticated admin subject
func GetAdminID(c *gin.Context) string {
	return c.GetString(AdminIDKey)
}
