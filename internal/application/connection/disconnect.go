package connection

import (
	"context"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
)

// Disconnect notifies Shipkia and clears the local connection.
// The notification uses the stored token as is and its outcome is ignored.
func (s *Service) Disconnect(ctx context.Context) connection.Result {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, OpDisconnect)
	defer span.End()
	log := s.log(ctx)

	c, err := s.load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		if lerr := s.DisconnectLocally(ctx); lerr != nil {
			log.Error("Failed to disconnect locally", zap.Error(lerr))
		}
		return connection.Result{Success: false, Message: errorMessage(err)}
	}

	if c.IsConnected() {
		if base, err := s.appURL(ctx); err == nil {
			req := connection.DisconnectRequest{StoreDomain: s.StoreDomain(), AccessToken: c.AccessToken}
			err := s.remoteCall(ctx, OpDisconnect, func() error {
				return s.platform.Disconnect(ctx, base, req)
			})
			if err != nil {
				log.Debug("Disconnect notification failed", zap.Error(err))
			}
		}
	}

	if err := s.DisconnectLocally(ctx); err != nil {
		telemetry.RecordError(span, err)
		return connection.Result{Success: false, Message: errorMessage(err)}
	}
	s.metrics.RecordDisconnect(ctx)
	log.Info("Disconnected from Shipkia", zap.String("store_id", c.StoreID))
	return connection.Result{Success: true, Message: MsgDisconnected}
}

// DisconnectLocally deletes the connection options and the check transients
func (s *Service) DisconnectLocally(ctx context.Context) error {
	if err := s.options.Delete(ctx, connection.ConnectionOptionKeys()...); err != nil {
		return err
	}
	return s.transients.Delete(ctx,
		connection.TransientAutoConnectChecked,
		connection.TransientConnectionVerified,
	)
}
