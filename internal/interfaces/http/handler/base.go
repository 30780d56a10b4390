package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/domain/shared"
	"github.com/shipkia/connector/internal/domain/tracking"
	"github.com/shipkia/connector/internal/infrastructure/logger"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
	"github.com/shipkia/connector/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the id assigned by the RequestID middleware
func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Result answers a connection operation. Failed results keep their message
// and are sent as ERR_CONNECTION_FAILED.
func (h *BaseHandler) Result(c *gin.Context, r connection.Result) {
	if !r.Success {
		h.ErrorWithCode(c, dto.ErrCodeConnectionFailed, r.Message)
		return
	}
	h.Success(c, dto.ResultResponse{Success: true, Message: r.Message})
}

// errorMapping is the API code and public message of a sentinel error
type errorMapping struct {
	target  error
	code    string
	message string
}

var sentinelErrors = []errorMapping{
	{tracking.ErrInvalidOrderID, dto.ErrCodeInvalidInput, "Invalid order id"},
	{tracking.ErrEmptyUpdate, dto.ErrCodeValidation, "Update carries no tracking field"},
	{connection.ErrNotConnected, dto.ErrCodeNotConnected, "Store is not connected to Shipkia"},
	{connection.ErrInvalidAppURL, dto.ErrCodeInvalidInput, "Invalid Shipkia URL"},
	{connection.ErrPlatformUnavailable, dto.ErrCodeUnavailable, "Shipkia is temporarily unavailable"},
	{connection.ErrSecretUnavailable, dto.ErrCodeUnavailable, "Plugin secret unavailable"},
	{connection.ErrInvalidSignature, dto.ErrCodeSignatureInvalid, "Invalid request signature"},
	{connection.ErrSignatureExpired, dto.ErrCodeSignatureExpired, "Request signature expired"},
}

// HandleError converts service errors to HTTP responses. Unknown errors are
// logged and answered as internal errors without their detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	for _, m := range sentinelErrors {
		if errors.Is(err, m.target) {
			h.ErrorWithCode(c, m.code, m.message)
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON binds the request body into obj, answering validation failures
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// OrderID binds the :id path parameter
func (h *BaseHandler) OrderID(c *gin.Context) (int64, bool) {
	var req dto.OrderIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Invalid order id")
		return 0, false
	}
	return req.ID, true
}
