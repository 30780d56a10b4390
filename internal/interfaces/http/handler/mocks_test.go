package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	appsettings "github.com/shipkia/connector/internal/application/settings"
	apptracking "github.com/shipkia/connector/internal/application/tracking"
	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/domain/tracking"
	"github.com/shipkia/connector/internal/infrastructure/auth"
)

// MockConnectionService is a mock implementation of ConnectionService
type MockConnectionService struct {
	mock.Mock
}

func (m *MockConnectionService) Status(ctx context.Context) (connection.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(connection.Status), args.Error(1)
}

func (m *MockConnectionService) ManualConnect(ctx context.Context, appURL string) connection.Result {
	return m.Called(ctx, appURL).Get(0).(connection.Result)
}

func (m *MockConnectionService) Disconnect(ctx context.Context) connection.Result {
	return m.Called(ctx).Get(0).(connection.Result)
}

func (m *MockConnectionService) ManualSync(ctx context.Context) connection.Result {
	return m.Called(ctx).Get(0).(connection.Result)
}

func (m *MockConnectionService) Activate(ctx context.Context) connection.Result {
	return m.Called(ctx).Get(0).(connection.Result)
}

func (m *MockConnectionService) AutoConnectCheck(ctx context.Context, onSettingsPage bool) error {
	return m.Called(ctx, onSettingsPage).Error(0)
}

// MockSettingsService is a mock implementation of SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (connection.TrackingSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(connection.TrackingSettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, in appsettings.UpdateInput) (appsettings.UpdateResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(appsettings.UpdateResult), args.Error(1)
}

// MockTrackingService is a mock implementation of TrackingService
type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) Get(ctx context.Context, orderID int64) (tracking.OrderTracking, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(tracking.OrderTracking), args.Error(1)
}

func (m *MockTrackingService) Column(ctx context.Context, orderID int64) (tracking.ColumnView, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(tracking.ColumnView), args.Error(1)
}

func (m *MockTrackingService) CustomerView(ctx context.Context, orderID int64) (tracking.CustomerView, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(tracking.CustomerView), args.Error(1)
}

func (m *MockTrackingService) Report(ctx context.Context, page int) (apptracking.Report, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(apptracking.Report), args.Error(1)
}

func (m *MockTrackingService) Apply(ctx context.Context, orderID int64, u tracking.Update) (tracking.OrderTracking, error) {
	args := m.Called(ctx, orderID, u)
	return args.Get(0).(tracking.OrderTracking), args.Error(1)
}

// MockTokenRevoker is a mock implementation of TokenRevoker
type MockTokenRevoker struct {
	mock.Mock
}

func (m *MockTokenRevoker) Revoke(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}
