package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shipkia/connector/internal/domain/connection"
)

// Outcome values of the outcome attribute
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid_response"
)

// ConnectionMetrics records Shipkia calls and connection lifecycle events
type ConnectionMetrics struct {
	remoteCalls    *Counter
	remoteDuration *Histogram
	tokenRefreshes *Counter
	connects       *Counter
	disconnects    *Counter
}

// NewConnectionMetrics creates the connection instruments on meter
func NewConnectionMetrics(meter metric.Meter) (*ConnectionMetrics, error) {
	m := &ConnectionMetrics{}
	var err error

	if m.remoteCalls, err = NewCounter(meter, "shipkia.remote.calls",
		"Calls to the Shipkia plugin API", "{call}"); err != nil {
		return nil, err
	}
	if m.remoteDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "shipkia.remote.duration",
		Description: "Duration of calls to the Shipkia plugin API",
		Unit:        "s",
		Boundaries:  RemoteCallBuckets,
	}); err != nil {
		return nil, err
	}
	if m.tokenRefreshes, err = NewCounter(meter, "shipkia.token.refreshes",
		"Access token refresh attempts", "{refresh}"); err != nil {
		return nil, err
	}
	if m.connects, err = NewCounter(meter, "shipkia.connection.connects",
		"Connection establishment attempts", "{attempt}"); err != nil {
		return nil, err
	}
	if m.disconnects, err = NewCounter(meter, "shipkia.connection.disconnects",
		"Local disconnects", "{disconnect}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRemoteCall counts one Shipkia call and its duration
func (m *ConnectionMetrics) RecordRemoteCall(ctx context.Context, operation string, d time.Duration, err error) {
	attrs := []attribute.KeyValue{AttrOperation.String(operation), AttrOutcome.String(callOutcome(err))}
	m.remoteCalls.Inc(ctx, attrs...)
	m.remoteDuration.RecordDuration(ctx, d, attrs...)
}

// RecordTokenRefresh counts one refresh attempt
func (m *ConnectionMetrics) RecordTokenRefresh(ctx context.Context, success bool) {
	m.tokenRefreshes.Inc(ctx, AttrOutcome.String(boolOutcome(success)))
}

// RecordConnect counts one attempt to establish the connection through operation
func (m *ConnectionMetrics) RecordConnect(ctx context.Context, operation string, success bool) {
	m.connects.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(boolOutcome(success)))
}

// RecordDisconnect counts one local disconnect
func (m *ConnectionMetrics) RecordDisconnect(ctx context.Context) {
	m.disconnects.Inc(ctx)
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, connection.ErrPlatformUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, connection.ErrPlatformInvalidResponse):
		return OutcomeInvalid
	default:
		return OutcomeFailure
	}
}

func boolOutcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
