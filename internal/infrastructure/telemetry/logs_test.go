package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// recordingProcessor keeps emitted records in memory
type recordingProcessor struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (p *recordingProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r.Clone())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }

func (p *recordingProcessor) Shutdown(context.Context) error   { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error { return nil }

func (p *recordingProcessor) bodies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func TestLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLoggerProvider_BridgesZapEntries(t *testing.T) {
	proc := &recordingProcessor{}
	lp, err := NewLoggerProviderWithProcessor(Config{Enabled: true, ServiceName: "shipkia-connector"}, proc, zap.NewNop())
	require.NoError(t, err)
	defer lp.Shutdown(context.Background())

	l := zap.New(lp.Core(zapcore.InfoLevel))
	l.Debug("dropped")
	l.Info("store connected", zap.String("domain", "shop.example.com"))
	l.With(zap.String("component", "scheduler")).Warn("check failed")

	require.NoError(t, lp.ForceFlush(context.Background()))
	assert.Equal(t, []string{"store connected", "check failed"}, proc.bodies())
}
