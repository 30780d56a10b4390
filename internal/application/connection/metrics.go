package connection

import (
	"context"
	"time"
)

// Operation names used in spans and metrics
const (
	OpVerify       = "verify"
	OpExchange     = "exchange"
	OpRefresh      = "refresh"
	OpAutoSync     = "auto_sync"
	OpSyncSettings = "sync_settings"
	OpDisconnect   = "disconnect"

	OpAutoConnect   = "auto_connect"
	OpManualConnect = "manual_connect"
)

// Metrics receives connection events
type Metrics interface {
	RecordRemoteCall(ctx context.Context, operation string, d time.Duration, err error)
	RecordTokenRefresh(ctx context.Context, success bool)
	RecordConnect(ctx context.Context, operation string, success bool)
	RecordDisconnect(ctx context.Context)
}

type nopMetrics struct{}

func (nopMetrics) RecordRemoteCall(context.Context, string, time.Duration, error) {}
func (nopMetrics) RecordTokenRefresh(context.Context, bool)                      {}
func (nopMetrics) RecordConnect(context.Context, string, bool)                   {}
func (nopMetrics) RecordDisconnect(context.Context)                              {}
