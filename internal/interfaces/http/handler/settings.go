package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appsettings "github.com/shipkia/connector/internal/application/settings"
	"github.com/shipkia/connector/internal/domain/connection"
)

// SettingsService reads and writes the tracking display settings
type SettingsService interface {
	Get(ctx context.Context) (connection.TrackingSettings, error)
	Update(ctx context.Context, in appsettings.UpdateInput) (appsettings.UpdateResult, error)
}

var _ SettingsService = (*appsettings.Service)(nil)

// SettingsHandler handles the settings endpoints
type SettingsHandler struct {
	BaseHandler
	service SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary      Tracking settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=connection.TrackingSettings}
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Update godoc
// @Summary      Update tracking settings
// @Description  Changed settings are pushed to Shipkia when the store is connected
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body appsettings.UpdateInput true "Settings"
// @Success      200 {object} dto.Response{data=appsettings.UpdateResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var in appsettings.UpdateInput
	if !h.BindJSON(c, &in) {
		return
	}
	res, err := h.service.Update(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
