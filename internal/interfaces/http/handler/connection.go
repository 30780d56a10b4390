package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	appconnection "github.com/shipkia/connector/internal/application/connection"
	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
)

// ConnectionService is the connection lifecycle the admin screens drive
type ConnectionService interface {
	Status(ctx context.Context) (connection.Status, error)
	ManualConnect(ctx context.Context, appURL string) connection.Result
	Disconnect(ctx context.Context) connection.Result
	ManualSync(ctx context.Context) connection.Result
	Activate(ctx context.Context) connection.Result
	AutoConnectCheck(ctx context.Context, onSettingsPage bool) error
}

var _ ConnectionService = (*appconnection.Service)(nil)

// SettingsScreen is the screen value of the settings page
const SettingsScreen = "settings"

// ConnectionHandler handles the Shipkia connection endpoints
type ConnectionHandler struct {
	BaseHandler
	service ConnectionService
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(service ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

// Status godoc
// @Summary      Connection status
// @Tags         connection
// @Produce      json
// @Success      200 {object} dto.Response{data=connection.Status}
// @Router       /connection/status [get]
func (h *ConnectionHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Connect godoc
// @Summary      Connect the store to a Shipkia instance
// @Tags         connection
// @Accept       json
// @Produce      json
// @Param        request body dto.ConnectRequest true "Shipkia URL"
// @Success      200 {object} dto.Response{data=dto.ResultResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /connection/connect [post]
func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req dto.ConnectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.AppURL) == "" {
		h.ErrorWithCode(c, dto.ErrCodeValidationRequired, "Shipkia URL is required")
		return
	}
	h.Result(c, h.service.ManualConnect(c.Request.Context(), req.AppURL))
}

// Disconnect godoc
// @Summary      Disconnect the store from Shipkia
// @Tags         connection
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.ResultResponse}
// @Router       /connection/disconnect [post]
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	h.Result(c, h.service.Disconnect(c.Request.Context()))
}

// Sync godoc
// @Summary      Run the auto sync handshake now
// @Tags         connection
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.ResultResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /connection/sync [post]
func (h *ConnectionHandler) Sync(c *gin.Context) {
	h.Result(c, h.service.ManualSync(c.Request.Context()))
}

// Activate godoc
// @Summary      Run the activation handshake
// @Tags         connection
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.ResultResponse}
// @Router       /connection/activate [post]
func (h *ConnectionHandler) Activate(c *gin.Context) {
	h.Result(c, h.service.Activate(c.Request.Context()))
}

// Check godoc
// @Summary      Run the auto-connect check and return the resulting status
// @Tags         connection
// @Produce      json
// @Param        screen query string false "Current admin screen"
// @Success      200 {object} dto.Response{data=connection.Status}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /connection/check [post]
func (h *ConnectionHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.service.AutoConnectCheck(ctx, c.Query("screen") == SettingsScreen); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Status(c)
}
