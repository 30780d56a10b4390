package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shipkia/connector/internal/interfaces/http/dto"
)

// SystemHandler serves the liveness endpoints
type SystemHandler struct {
	BaseHandler
	name          string
	pluginVersion string
	startTime     time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, pluginVersion string) *SystemHandler {
	return &SystemHandler{
		name:          name,
		pluginVersion: pluginVersion,
		startTime:     time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name          string `json:"name"`
	PluginVersion string `json:"plugin_version"`
	GoVersion     string `json:"go_version"`
	Uptime        string `json:"uptime"`
}

// GetSystemInfo returns the service name, plugin version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:          h.name,
		PluginVersion: h.pluginVersion,
		GoVersion:     runtime.Version(),
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping answers pong
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}))
}
