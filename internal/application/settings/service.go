// Package settings implements reading and updating the customer-facing
// tracking display settings.
package settings

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/logger"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
)

// Syncer pushes settings to Shipkia when the store is connected
type Syncer interface {
	IsConnected(ctx context.Context) (bool, error)
	SyncSettings(ctx context.Context) error
}

// UpdateInput is a partial settings update. Nil fields are left untouched.
type UpdateInput struct {
	TrackingEnabled *bool   `json:"tracking_enabled"`
	ButtonText      *string `json:"button_text" binding:"omitempty,max=100"`
	NewTab          *bool   `json:"new_tab"`
}

// UpdateResult is the outcome of an update
type UpdateResult struct {
	Settings connection.TrackingSettings `json:"settings"`
	Changed  bool                        `json:"changed"`
	Synced   bool                        `json:"synced"`
}

// Service reads and writes the tracking settings
type Service struct {
	options connection.OptionStore
	syncer  Syncer
	logger  *zap.Logger
}

// NewService creates a new settings service
func NewService(options connection.OptionStore, syncer Syncer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{options: options, syncer: syncer, logger: log}
}

// Get returns the current settings with defaults applied
func (s *Service) Get(ctx context.Context) (connection.TrackingSettings, error) {
	return connection.ReadTrackingSettings(ctx, s.options)
}

// Update writes the changed settings and pushes them to Shipkia when connected.
// A failed push is logged and reported through Synced.
func (s *Service) Update(ctx context.Context, in UpdateInput) (UpdateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settings", "update")
	defer span.End()

	current, err := s.Get(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return UpdateResult{}, err
	}

	next := current
	if in.TrackingEnabled != nil {
		next.Enabled = *in.TrackingEnabled
	}
	if in.ButtonText != nil {
		next.ButtonText = strings.TrimSpace(*in.ButtonText)
	}
	if in.NewTab != nil {
		next.NewTab = *in.NewTab
	}

	changed := changedOptions(current.Options(), next.Options())
	if len(changed) == 0 {
		return UpdateResult{Settings: current}, nil
	}
	if err := s.options.SetMany(ctx, changed); err != nil {
		telemetry.RecordError(span, err)
		return UpdateResult{}, err
	}

	saved, err := s.Get(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return UpdateResult{}, err
	}
	res := UpdateResult{Settings: saved, Changed: true}
	telemetry.SetAttributes(span, "settings.changed", len(changed))

	log := logger.WithLogger(ctx, s.logger)
	connected, err := s.syncer.IsConnected(ctx)
	if err != nil {
		log.Warn("Failed to read connection state", zap.Error(err))
		return res, nil
	}
	if !connected {
		return res, nil
	}
	if err := s.syncer.SyncSettings(ctx); err != nil {
		log.Warn("Settings sync failed", zap.Error(err))
		return res, nil
	}
	res.Synced = true
	return res, nil
}

func changedOptions(before, after map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range after {
		if before[k] != v {
			out[k] = v
		}
	}
	return out
}
