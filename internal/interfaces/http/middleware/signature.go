package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
)

// Platform push headers
const (
	TimestampHeader = "X-Shipkia-Timestamp"
	SignatureHeader = "X-Shipkia-Signature"
)

// PushVerifier checks the signature of a platform push
type PushVerifier interface {
	VerifyPush(ctx context.Context, timestamp, signature string, body []byte) error
}

// PushSignature authenticates platform pushes signed with the plugin secret.
// The body is read for the check and restored for the handler.
func PushSignature(verifier PushVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDKey)
		timestamp := c.GetHeader(TimestampHeader)
		signature := c.GetHeader(SignatureHeader)
		if timestamp == "" || signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeSignatureInvalid, "Missing request signature", requestID))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", requestID))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Failed to read request body", requestID))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := verifier.VerifyPush(c.Request.Context(), timestamp, signature, body); err != nil {
			status, code, message := http.StatusUnauthorized, dto.ErrCodeSignatureInvalid, "Invalid request signature"
			switch {
			case errors.Is(err, connection.ErrSignatureExpired):
				code, message = dto.ErrCodeSignatureExpired, "Request signature expired"
			case errors.Is(err, connection.ErrSecretUnavailable):
				status, code, message = http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Plugin secret unavailable"
			}
			log.Warn("Platform push rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("code", code),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, requestID))
			return
		}

		c.Next()
	}
}
