package connection

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
)

// AccessToken returns a usable access token, refreshing it when it expires
// within the refresh leeway. A failed refresh disconnects the store and
// returns ErrNotConnected.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	c, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if !c.IsConnected() {
		return "", connection.ErrNotConnected
	}
	if !c.NeedsRefresh(s.now()) {
		return c.AccessToken, nil
	}

	c, err = s.refreshToken(ctx, c)
	if err != nil {
		s.log(ctx).Warn("Token refresh failed, disconnecting", zap.String("store_id", c.StoreID), zap.Error(err))
		s.Disconnect(ctx)
		return "", connection.ErrNotConnected
	}
	return c.AccessToken, nil
}

// refreshToken exchanges the refresh token for a new access token and
// persists it. Only the token keys are written.
func (s *Service) refreshToken(ctx context.Context, c connection.Connection) (connection.Connection, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpRefresh)
	defer span.End()

	updated, err := s.doRefresh(ctx, c)
	s.metrics.RecordTokenRefresh(ctx, err == nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return c, err
	}
	s.log(ctx).Info("Access token refreshed", zap.String("store_id", c.StoreID))
	return updated, nil
}

func (s *Service) doRefresh(ctx context.Context, c connection.Connection) (connection.Connection, error) {
	if c.RefreshToken == "" {
		return c, connection.ErrNoRefreshToken
	}
	base, err := s.appURL(ctx)
	if err != nil {
		return c, err
	}
	req := connection.RefreshRequest{
		RefreshToken: c.RefreshToken,
		StoreDomain:  s.StoreDomain(),
	}

	var resp *connection.TokenResponse
	err = s.remoteCall(ctx, OpRefresh, func() error {
		var err error
		resp, err = s.platform.RefreshToken(ctx, base, req)
		return err
	})
	if err != nil {
		return c, fmt.Errorf("%w: %w", connection.ErrTokenRefreshFailed, err)
	}
	if !resp.IsSuccess() || resp.AccessToken == "" {
		return c, fmt.Errorf("%w: %s", connection.ErrTokenRefreshFailed, resp.Message)
	}

	c.ApplyRefresh(connection.TokenGrant{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, s.now())

	values := map[string]string{
		connection.OptionAccessToken: c.AccessToken,
		connection.OptionTokenExpiry: strconv.FormatInt(c.TokenExpiry, 10),
	}
	if resp.RefreshToken != "" {
		values[connection.OptionRefreshToken] = c.RefreshToken
	}
	if err := s.options.SetMany(ctx, values); err != nil {
		return c, err
	}
	return c, nil
}

// SyncSettings pushes the display settings to Shipkia
func (s *Service) SyncSettings(ctx context.Context) error {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpSyncSettings)
	defer span.End()

	err := s.syncSettings(ctx)
	telemetry.RecordError(span, err)
	return err
}

func (s *Service) syncSettings(ctx context.Context) error {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}
	base, err := s.appURL(ctx)
	if err != nil {
		return err
	}
	settings, err := connection.ReadTrackingSettings(ctx, s.options)
	if err != nil {
		return err
	}
	req := connection.SyncSettingsRequest{
		Domain:      s.StoreDomain(),
		AccessToken: token,
		Settings:    connection.NewSyncPayload(settings, s.config.PluginVersion),
	}
	return s.remoteCall(ctx, OpSyncSettings, func() error {
		return s.platform.SyncSettings(ctx, base, req)
	})
}
