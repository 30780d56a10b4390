package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	apptracking "github.com/shipkia/connector/internal/application/tracking"
	"github.com/shipkia/connector/internal/domain/tracking"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
)

// TrackingService reads and writes order tracking metadata
type TrackingService interface {
	Get(ctx context.Context, orderID int64) (tracking.OrderTracking, error)
	Column(ctx context.Context, orderID int64) (tracking.ColumnView, error)
	CustomerView(ctx context.Context, orderID int64) (tracking.CustomerView, error)
	Report(ctx context.Context, page int) (apptracking.Report, error)
	Apply(ctx context.Context, orderID int64, u tracking.Update) (tracking.OrderTracking, error)
}

var _ TrackingService = (*apptracking.Service)(nil)

// TrackingHandler handles the order tracking endpoints
type TrackingHandler struct {
	BaseHandler
	service TrackingService
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(service TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// Report godoc
// @Summary      Tracking report
// @Description  Orders with tracking data, newest first
// @Tags         tracking
// @Produce      json
// @Param        page query int false "Page number"
// @Success      200 {object} dto.Response{data=[]tracking.ReportRow,meta=dto.Meta}
// @Router       /orders/tracking [get]
func (h *TrackingHandler) Report(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Invalid page")
		return
	}

	report, err := h.service.Report(c.Request.Context(), req.Page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, report.Rows, report.Total, report.Page, report.PageSize)
}

// Detail godoc
// @Summary      Tracking of one order
// @Tags         tracking
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=dto.TrackingDetail}
// @Router       /orders/{id}/tracking [get]
func (h *TrackingHandler) Detail(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.TrackingDetail{OrderTracking: t, HasData: t.HasData()})
}

// Column godoc
// @Summary      Order list column cell
// @Tags         tracking
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=tracking.ColumnView}
// @Router       /orders/{id}/tracking/column [get]
func (h *TrackingHandler) Column(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	view, err := h.service.Column(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Customer godoc
// @Summary      Customer tracking view
// @Tags         tracking
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} dto.Response{data=tracking.CustomerView}
// @Router       /orders/{id}/tracking/customer [get]
func (h *TrackingHandler) Customer(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	view, err := h.service.CustomerView(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Push godoc
// @Summary      Apply a tracking update pushed by Shipkia
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        X-Shipkia-Timestamp header string true "Unix timestamp"
// @Param        X-Shipkia-Signature header string true "HMAC-SHA256 signature"
// @Param        request body tracking.Update true "Tracking fields"
// @Success      200 {object} dto.Response{data=tracking.OrderTracking}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/tracking [put]
func (h *TrackingHandler) Push(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	var update tracking.Update
	if !h.BindJSON(c, &update) {
		return
	}

	t, err := h.service.Apply(c.Request.Context(), id, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}
