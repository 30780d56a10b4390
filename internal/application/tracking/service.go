// Package tracking serves the per-order shipment tracking views and applies
// the tracking updates pushed by the Shipkia platform.
package tracking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/domain/tracking"
	"github.com/shipkia/connector/internal/infrastructure/logger"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
)

// SecretSource returns the plugin secret pushes are signed with
type SecretSource interface {
	Secret(ctx context.Context) (string, error)
}

// Report is one page of the tracking report
type Report struct {
	Rows       []tracking.ReportRow `json:"rows"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// Service reads and writes order tracking metadata
type Service struct {
	repo    tracking.Repository
	options connection.OptionStore
	secrets SecretSource
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used to check push signatures
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new tracking service
func NewService(repo tracking.Repository, options connection.OptionStore, secrets SecretSource, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{repo: repo, options: options, secrets: secrets, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the tracking metadata of an order
func (s *Service) Get(ctx context.Context, orderID int64) (tracking.OrderTracking, error) {
	if orderID <= 0 {
		return tracking.OrderTracking{}, tracking.ErrInvalidOrderID
	}
	return s.repo.Get(ctx, orderID)
}

// TrackingURL returns the stored tracking URL of an order, empty when unset
func (s *Service) TrackingURL(ctx context.Context, orderID int64) (string, error) {
	t, err := s.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	return t.TrackingURL, nil
}

// Column returns the order-list column cell of an order
func (s *Service) Column(ctx context.Context, orderID int64) (tracking.ColumnView, error) {
	t, err := s.Get(ctx, orderID)
	if err != nil {
		return tracking.ColumnView{}, err
	}
	return tracking.NewColumnView(t), nil
}

// CustomerView returns what the customer sees for an order
func (s *Service) CustomerView(ctx context.Context, orderID int64) (tracking.CustomerView, error) {
	t, err := s.Get(ctx, orderID)
	if err != nil {
		return tracking.CustomerView{}, err
	}
	settings, err := connection.ReadTrackingSettings(ctx, s.options)
	if err != nil {
		return tracking.CustomerView{}, err
	}
	return tracking.NewCustomerView(t, settings), nil
}

// Report returns a page of orders with tracking data, newest first
func (s *Service) Report(ctx context.Context, page int) (Report, error) {
	filter := tracking.ListFilter{Page: page, PageSize: tracking.DefaultPageSize}.Normalize()

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	settings, err := connection.ReadTrackingSettings(ctx, s.options)
	if err != nil {
		return Report{}, err
	}

	rows := make([]tracking.ReportRow, 0, len(items))
	for _, t := range items {
		rows = append(rows, tracking.NewReportRow(t, settings))
	}
	pages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return Report{
		Rows:       rows,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: pages,
	}, nil
}

// VerifyPush checks the signature of a platform push against the plugin secret
func (s *Service) VerifyPush(ctx context.Context, timestamp, signature string, body []byte) error {
	secret, err := s.secrets.Secret(ctx)
	if err != nil {
		return err
	}
	return connection.VerifyPush(secret, timestamp, signature, body, s.now())
}

// Apply writes a platform tracking update and returns the resulting tracking
func (s *Service) Apply(ctx context.Context, orderID int64, u tracking.Update) (tracking.OrderTracking, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking", "apply_update", telemetry.SpanAttrOrderID, orderID)
	defer span.End()

	if err := u.Validate(orderID); err != nil {
		telemetry.RecordError(span, err)
		return tracking.OrderTracking{}, err
	}
	values := u.Values()
	if err := s.repo.Save(ctx, orderID, values); err != nil {
		telemetry.RecordError(span, err)
		return tracking.OrderTracking{}, fmt.Errorf("failed to save tracking of order %d: %w", orderID, err)
	}

	logger.WithLogger(ctx, s.logger).Info("Tracking updated",
		zap.Int64("order_id", orderID),
		zap.Int("fields", len(values)),
	)
	return s.repo.Get(ctx, orderID)
}
