package connection

import (
	"context"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
)

const spanService = "connection"

// Activation result messages
const (
	MsgActivated         = "Store synced with Shipkia"
	MsgActivationPending = "Shipkia sync failed, auto-connect will be retried"
)

// AutoConnectCheck is the periodic connection check.
// A connected store is re-verified once per verify interval, a disconnected
// one retries auto-connect at most once per check interval.
// Checks never overlap: a check started while another runs fails with
// ErrCheckInProgress.
func (s *Service) AutoConnectCheck(ctx context.Context, onSettingsPage bool) error {
	if !s.checking.TryLock() {
		return connection.ErrCheckInProgress
	}
	defer s.checking.Unlock()

	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "auto_connect_check")
	defer span.End()
	telemetry.SetAttributes(span, "connection.settings_page", onSettingsPage)

	err := s.autoConnectCheck(ctx, onSettingsPage)
	telemetry.RecordError(span, err)
	return err
}

func (s *Service) autoConnectCheck(ctx context.Context, onSettingsPage bool) error {
	c, err := s.load(ctx)
	if err != nil {
		return err
	}

	if c.IsConnected() {
		verified, err := s.flagSet(ctx, connection.TransientConnectionVerified)
		if err != nil || verified {
			return err
		}
		s.attemptAutoConnect(ctx)
		interval := connection.VerifyInterval
		if onSettingsPage {
			interval = connection.VerifyIntervalSettingsPage
		}
		return s.setFlag(ctx, connection.TransientConnectionVerified, interval)
	}

	forced, err := s.flagSet(ctx, connection.TransientTriggerAutoConnect)
	if err != nil {
		return err
	}
	if forced {
		if err := s.transients.Delete(ctx, connection.TransientTriggerAutoConnect); err != nil {
			return err
		}
		s.attemptAutoConnect(ctx)
		return nil
	}

	checked, err := s.flagSet(ctx, connection.TransientAutoConnectChecked)
	if err != nil {
		return err
	}
	if checked {
		if !onSettingsPage {
			return nil
		}
		recent, err := s.flagSet(ctx, connection.TransientAutoConnectSettings)
		if err != nil || recent {
			return err
		}
	}

	if err := s.setFlag(ctx, connection.TransientAutoConnectChecked, connection.AutoConnectCheckInterval); err != nil {
		return err
	}
	if onSettingsPage {
		if err := s.setFlag(ctx, connection.TransientAutoConnectSettings, connection.SettingsPageCheckInterval); err != nil {
			return err
		}
	}

	s.attemptAutoConnect(ctx)
	return nil
}

// attemptAutoConnect verifies the store with Shipkia and follows the answer.
// Failures are logged only.
func (s *Service) attemptAutoConnect(ctx context.Context) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpAutoConnect)
	defer span.End()
	log := s.log(ctx)

	base, err := s.appURL(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to read Shipkia URL", zap.Error(err))
		return
	}

	verify, err := s.verify(ctx, base)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Auto-connect verification failed", zap.Error(err))
		return
	}
	telemetry.SetAttributes(span, "connection.remote_connected", verify.Connected)

	if verify.Connected {
		if verify.TempToken == "" {
			log.Debug("Store verified without temporary token")
			return
		}
		ok := s.exchangeToken(ctx, base, verify.TempToken, verify.StoreID, verify.PlatformURL)
		s.metrics.RecordConnect(ctx, OpAutoConnect, ok)
		if ok {
			log.Info("Auto-connected to Shipkia", zap.String("store_id", verify.StoreID))
		}
		return
	}

	c, err := s.load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to load connection", zap.Error(err))
		return
	}
	if c.IsConnected() {
		log.Info("Store disconnected on Shipkia, disconnecting locally",
			zap.String("store_id", c.StoreID),
			zap.String("status", verify.Status),
		)
		if err := s.DisconnectLocally(ctx); err != nil {
			telemetry.RecordError(span, err)
			log.Error("Failed to disconnect locally", zap.Error(err))
			return
		}
		s.metrics.RecordDisconnect(ctx)
	}
}

// verify signs the store domain and asks Shipkia for the connection state
func (s *Service) verify(ctx context.Context, base string) (*connection.VerifyResponse, error) {
	secret, err := s.secrets.Secret(ctx)
	if err != nil {
		return nil, err
	}
	domain := s.StoreDomain()
	timestamp := connection.FormatSignatureTimestamp(s.now())
	req := connection.VerifyRequest{
		Domain:    domain,
		Signature: connection.Sign(secret, domain, timestamp),
		Timestamp: timestamp,
	}

	var resp *connection.VerifyResponse
	err = s.remoteCall(ctx, OpVerify, func() error {
		var err error
		resp, err = s.platform.VerifyConnection(ctx, base, req)
		return err
	})
	return resp, err
}

// AutoSync registers or updates the store with Shipkia and stores the
// connection it hands back. It reports whether the store is now connected.
func (s *Service) AutoSync(ctx context.Context) bool {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpAutoSync)
	defer span.End()
	log := s.log(ctx)

	ok, err := s.autoSync(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Auto-sync failed", zap.Error(err))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSuccess, ok)
	return ok
}

func (s *Service) autoSync(ctx context.Context) (bool, error) {
	base, err := s.appURL(ctx)
	if err != nil {
		return false, err
	}
	secret, err := s.secrets.Secret(ctx)
	if err != nil {
		return false, err
	}
	domain := s.StoreDomain()
	req := connection.AutoSyncRequest{
		Domain:        domain,
		Platform:      connection.DefaultPlatformName,
		Plugin:        connection.DefaultPluginSlug,
		PluginVersion: s.config.PluginVersion,
		Secret:        secret,
	}

	var resp *connection.AutoSyncResponse
	err = s.remoteCall(ctx, OpAutoSync, func() error {
		var err error
		resp, err = s.platform.AutoSync(ctx, base, req)
		return err
	})
	if err != nil {
		return false, err
	}
	if !resp.Connected {
		s.log(ctx).Info("Auto-sync did not connect the store", zap.String("message", resp.Message))
		return false, nil
	}

	c, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	c.Apply(resp.Grant(), domain, s.now())
	if err := s.options.SetMany(ctx, c.Options()); err != nil {
		return false, err
	}
	s.log(ctx).Info("Auto-sync connected the store", zap.String("store_id", c.StoreID))
	return true, nil
}

// Activate runs the activation auto-sync. When it does not connect the
// store, the next check is forced to attempt an auto-connect.
func (s *Service) Activate(ctx context.Context) connection.Result {
	ok := s.AutoSync(ctx)
	s.metrics.RecordConnect(ctx, OpAutoSync, ok)
	if ok {
		return connection.Result{Success: true, Message: MsgActivated}
	}

	if err := s.transients.Delete(ctx, connection.TransientAutoConnectChecked); err != nil {
		return connection.Result{Success: false, Message: errorMessage(err)}
	}
	if err := s.setFlag(ctx, connection.TransientTriggerAutoConnect, connection.TriggerAutoConnectTTL); err != nil {
		return connection.Result{Success: false, Message: errorMessage(err)}
	}
	return connection.Result{Success: false, Message: MsgActivationPending}
}

// ManualSync re-runs auto-sync on request and marks the connection verified
func (s *Service) ManualSync(ctx context.Context) connection.Result {
	s.log(ctx).Info("Manual sync requested")
	if !s.AutoSync(ctx) {
		return connection.Result{Success: false, Message: MsgSyncFailed}
	}
	if err := s.setFlag(ctx, connection.TransientConnectionVerified, connection.VerifyIntervalSettingsPage); err != nil {
		s.log(ctx).Warn("Failed to mark connection verified", zap.Error(err))
	}
	return connection.Result{Success: true, Message: MsgSyncSuccessful}
}
