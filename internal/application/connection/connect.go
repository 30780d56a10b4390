package connection

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
)

// ManualConnect stores appURL as the Shipkia URL and connects the store
// against it. A store Shipkia does not know is registered through auto-sync.
func (s *Service) ManualConnect(ctx context.Context, appURL string) connection.Result {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpManualConnect)
	defer span.End()

	res := s.manualConnect(ctx, strings.TrimSpace(appURL))
	telemetry.SetAttributes(span, telemetry.SpanAttrSuccess, res.Success)
	if !res.Success {
		telemetry.RecordError(span, errors.New(res.Message))
	}
	s.metrics.RecordConnect(ctx, OpManualConnect, res.Success)
	return res
}

func (s *Service) manualConnect(ctx context.Context, appURL string) connection.Result {
	log := s.log(ctx)

	if err := connection.ValidateAppURL(appURL); err != nil {
		return connection.Result{Success: false, Message: MsgInvalidURL}
	}
	if err := s.options.Set(ctx, connection.OptionAppURL, appURL); err != nil {
		return s.fail(ctx, err)
	}
	base := connection.BaseURL(appURL)

	verify, err := s.verify(ctx, base)
	switch {
	case errors.Is(err, connection.ErrPlatformUnavailable):
		log.Warn("Manual connect could not reach Shipkia", zap.String("endpoint", base), zap.Error(err))
		return connection.Result{Success: false, Message: msgConnectionFailedAt + transportMessage(err)}
	case errors.Is(err, connection.ErrPlatformInvalidResponse), errors.Is(err, connection.ErrPlatformRequestFailed):
		log.Warn("Manual connect got an invalid response", zap.String("endpoint", base), zap.Error(err))
		return connection.Result{Success: false, Message: MsgInvalidResponse}
	case err != nil:
		return s.fail(ctx, err)
	}

	if verify.Connected {
		if !s.exchangeToken(ctx, base, verify.TempToken, verify.StoreID, verify.PlatformURL) {
			return connection.Result{Success: false, Message: MsgConnectionFailed}
		}
		if err := s.transients.Delete(ctx, connection.TransientConnectionError); err != nil {
			log.Warn("Failed to clear connection error", zap.Error(err))
		}
		log.Info("Connected to Shipkia", zap.String("store_id", verify.StoreID))
		return connection.Result{Success: true, Message: MsgConnected}
	}

	if verify.IsNotFound() {
		log.Info("Store not found on Shipkia, registering through auto-sync")
		if s.AutoSync(ctx) {
			return connection.Result{Success: true, Message: MsgRegistered}
		}
	}

	msg := verify.Message
	if msg == "" {
		msg = MsgStoreNotFound
	}
	s.recordConnectionError(ctx, msg)
	return connection.Result{Success: false, Message: msg}
}

// exchangeToken trades a temporary token for the store's tokens, stores them
// and pushes the settings. It reports whether the store is now connected.
func (s *Service) exchangeToken(ctx context.Context, base, tempToken, storeID, platformURL string) bool {
	domain := s.StoreDomain()
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpExchange,
		telemetry.SpanAttrDomain, domain,
		telemetry.SpanAttrStoreID, storeID,
	)
	defer span.End()
	log := s.log(ctx).With(zap.String("store_id", storeID))

	req := connection.ExchangeRequest{
		TempToken:   tempToken,
		StoreDomain: domain,
		StoreID:     storeID,
	}

	var resp *connection.TokenResponse
	err := s.remoteCall(ctx, OpExchange, func() error {
		var err error
		resp, err = s.platform.ExchangeToken(ctx, base, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Token exchange failed", zap.Error(err))
		return false
	}
	// a success without an access token would leave the store disconnected
	if !resp.IsSuccess() || resp.AccessToken == "" {
		telemetry.RecordError(span, connection.ErrTokenRefreshFailed)
		log.Warn("Token exchange rejected", zap.String("status", resp.Status), zap.String("message", resp.Message))
		if resp.Message != "" {
			s.recordConnectionError(ctx, resp.Message)
		}
		return false
	}

	c, err := s.load(ctx)
	if err == nil {
		c.Apply(connection.TokenGrant{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
			StoreID:      storeID,
			PlatformURL:  platformURL,
		}, domain, s.now())
		err = s.options.SetMany(ctx, c.Options())
	}
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to store tokens", zap.Error(err))
		s.recordConnectionError(ctx, err.Error())
		return false
	}
	telemetry.AddEvent(span, "tokens_stored", telemetry.SpanAttrSuccess, true)

	if err := s.SyncSettings(ctx); err != nil {
		log.Warn("Settings sync after connect failed", zap.Error(err))
	}
	return true
}

// fail records err as the connection error and renders it for the admin
func (s *Service) fail(ctx context.Context, err error) connection.Result {
	s.log(ctx).Error("Connection operation failed", zap.Error(err))
	s.recordConnectionError(ctx, err.Error())
	return connection.Result{Success: false, Message: errorMessage(err)}
}

func (s *Service) recordConnectionError(ctx context.Context, msg string) {
	if err := s.transients.Set(ctx, connection.TransientConnectionError, msg, connection.ConnectionErrorTTL); err != nil {
		s.log(ctx).Warn("Failed to record connection error", zap.Error(err))
	}
}
