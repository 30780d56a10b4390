package telemetry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
)

func newTestMeterProvider(t *testing.T) (*MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp, err := NewMeterProviderWithReader(Config{Enabled: true, ServiceName: "test"}, reader, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

// sumByOutcome collects counter points of name keyed by their outcome attribute
func sumByOutcome(t *testing.T, reader *sdkmetric.ManualReader, name string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(AttrOutcome)
				op, _ := dp.Attributes.Value(AttrOperation)
				out[fmt.Sprintf("%s/%s", op.AsString(), outcome.AsString())] += dp.Value
			}
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestConnectionMetrics(t *testing.T) {
	ctx := context.Background()
	mp, reader := newTestMeterProvider(t)

	m, err := NewConnectionMetrics(mp.Meter(TracerName))
	require.NoError(t, err)

	m.RecordRemoteCall(ctx, "verify", 120*time.Millisecond, nil)
	m.RecordRemoteCall(ctx, "verify", time.Second, connection.ErrPlatformUnavailable)
	m.RecordRemoteCall(ctx, "exchange", time.Second, fmt.Errorf("wrapped: %w", connection.ErrPlatformInvalidResponse))
	m.RecordRemoteCall(ctx, "refresh", time.Second, connection.ErrTokenRefreshFailed)
	m.RecordTokenRefresh(ctx, true)
	m.RecordTokenRefresh(ctx, false)
	m.RecordConnect(ctx, "manual_connect", true)
	m.RecordDisconnect(ctx)

	assert.Equal(t, map[string]int64{
		"verify/success":            1,
		"verify/unavailable":        1,
		"exchange/invalid_response": 1,
		"refresh/failure":           1,
	}, sumByOutcome(t, reader, "shipkia.remote.calls"))

	assert.Equal(t, map[string]int64{
		"/success": 1,
		"/failure": 1,
	}, sumByOutcome(t, reader, "shipkia.token.refreshes"))

	assert.Equal(t, map[string]int64{"manual_connect/success": 1},
		sumByOutcome(t, reader, "shipkia.connection.connects"))
}

func TestCallOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, callOutcome(nil))
	assert.Equal(t, OutcomeUnavailable, callOutcome(connection.ErrPlatformUnavailable))
	assert.Equal(t, OutcomeInvalid, callOutcome(connection.ErrPlatformInvalidResponse))
	assert.Equal(t, OutcomeFailure, callOutcome(connection.ErrPlatformRequestFailed))
}
