package connection

import (
	"context"

	"github.com/shipkia/connector/internal/domain/connection"
)

// IsConnected reports whether the store holds a connection
func (s *Service) IsConnected(ctx context.Context) (bool, error) {
	c, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return c.IsConnected(), nil
}

// Status returns the connection view shown to the admin
func (s *Service) Status(ctx context.Context) (connection.Status, error) {
	c, err := s.load(ctx)
	if err != nil {
		return connection.Status{}, err
	}
	appURL, err := s.appURL(ctx)
	if err != nil {
		return connection.Status{}, err
	}
	lastError, _, err := s.transients.Get(ctx, connection.TransientConnectionError)
	if err != nil {
		return connection.Status{}, err
	}
	recent, err := s.flagSet(ctx, connection.TransientAutoConnectSettings)
	if err != nil {
		return connection.Status{}, err
	}

	status := connection.NewStatus(c, appURL, lastError, s.now())
	status.RecentlyChecked = recent
	return status, nil
}
