package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apptracking "github.com/shipkia/connector/internal/application/tracking"
	"github.com/shipkia/connector/internal/domain/shared"
	"github.com/shipkia/connector/internal/domain/tracking"
	"github.com/shipkia/connector/internal/interfaces/http/dto"
)

func setupTrackingRouter(svc *MockTrackingService) *gin.Engine {
	h := NewTrackingHandler(svc)
	r := gin.New()
	r.GET("/orders/tracking", h.Report)
	r.GET("/orders/:id/tracking", h.Detail)
	r.GET("/orders/:id/tracking/column", h.Column)
	r.GET("/orders/:id/tracking/customer", h.Customer)
	r.PUT("/orders/:id/tracking", h.Push)
	return r
}

func TestTrackingHandler_Report(t *testing.T) {
	t.Run("returns rows with pagination meta", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Report", mock.Anything, 2).Return(apptracking.Report{
			Rows:       []tracking.ReportRow{{OrderID: 7}},
			Total:      21,
			Page:       2,
			PageSize:   20,
			TotalPages: 2,
		}, nil)

		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/tracking?page=2", nil))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(21), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 2, resp.Meta.TotalPages)
		assert.Len(t, resp.Data, 1)
	})

	t.Run("missing page is passed as zero", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Report", mock.Anything, 0).Return(apptracking.Report{Page: 1, PageSize: 20}, nil)

		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/tracking", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid page", func(t *testing.T) {
		svc := new(MockTrackingService)

		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/tracking?page=abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Report", mock.Anything, mock.Anything)
	})

	t.Run("page beyond the last allowed page", func(t *testing.T) {
		svc := new(MockTrackingService)

		for _, page := range []string{"100001", "922337203685477580"} {
			w := httptest.NewRecorder()
			setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/tracking?page="+page, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code, page)
		}
		svc.AssertNotCalled(t, "Report", mock.Anything, mock.Anything)
	})
}

func TestTrackingHandler_Detail(t *testing.T) {
	svc := new(MockTrackingService)
	svc.On("Get", mock.Anything, int64(42)).Return(tracking.OrderTracking{
		OrderID:   42,
		AWBNumber: "AWB123",
	}, nil)
	svc.On("Get", mock.Anything, int64(43)).Return(tracking.OrderTracking{OrderID: 43}, nil)

	r := setupTrackingRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42/tracking", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "AWB123", data["awb_number"])
	assert.Equal(t, true, data["has_data"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/43/tracking", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, false, data["has_data"])
}

func TestTrackingHandler_Column(t *testing.T) {
	svc := new(MockTrackingService)
	svc.On("Column", mock.Anything, int64(5)).Return(tracking.NewColumnView(tracking.OrderTracking{
		OrderID:        5,
		DeliveryStatus: "In Transit",
		AWBNumber:      "AWB5",
		TrackingURL:    "https://track.example.com/AWB5",
	}), nil)

	w := httptest.NewRecorder()
	setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/5/tracking/column", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "In Transit", data["primary"])
	assert.Equal(t, "AWB5", data["secondary"])
	assert.Equal(t, tracking.TargetBlank, data["target"])
}

func TestTrackingHandler_Customer(t *testing.T) {
	t.Run("visible view", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("CustomerView", mock.Anything, int64(9)).Return(tracking.CustomerView{
			OrderID:     9,
			Visible:     true,
			TrackingURL: "https://track.example.com/9",
			ButtonText:  "Track Your Order",
			Target:      tracking.TargetSelf,
		}, nil)

		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/9/tracking/customer", nil))

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, true, data["visible"])
		assert.Equal(t, "Track Your Order", data["button_text"])
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("CustomerView", mock.Anything, int64(10)).Return(tracking.CustomerView{}, shared.NewDomainError(shared.CodeNotFound, "Order not found"))

		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/10/tracking/customer", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id never reaches the service", func(t *testing.T) {
		svc := new(MockTrackingService)

		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/x/tracking/customer", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "CustomerView", mock.Anything, mock.Anything)
	})
}

func TestTrackingHandler_Push(t *testing.T) {
	t.Run("applies the update", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Apply", mock.Anything, int64(42), mock.MatchedBy(func(u tracking.Update) bool {
			return u.AWBNumber != nil && *u.AWBNumber == "AWB42" && u.TrackingURL == nil
		})).Return(tracking.OrderTracking{OrderID: 42, AWBNumber: "AWB42"}, nil)

		req := httptest.NewRequest(http.MethodPut, "/orders/42/tracking", bytes.NewBufferString(`{"awb_number":"AWB42"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "AWB42", data["awb_number"])
		svc.AssertExpectations(t)
	})

	t.Run("empty update", func(t *testing.T) {
		svc := new(MockTrackingService)
		svc.On("Apply", mock.Anything, int64(42), tracking.Update{}).
			Return(tracking.OrderTracking{}, tracking.ErrEmptyUpdate)

		req := httptest.NewRequest(http.MethodPut, "/orders/42/tracking", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockTrackingService)

		req := httptest.NewRequest(http.MethodPut, "/orders/42/tracking", bytes.NewBufferString(`{"awb_number":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupTrackingRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
		svc.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
	})
}
