// Package connection implements the connection use cases: auto-connect,
// manual connect, token lifecycle and settings sync with Shipkia.
package connection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/logger"
)

// Result messages returned to the admin
const (
	MsgInvalidURL         = "Invalid Shipkia URL"
	MsgConnected          = "Connected to Shipkia successfully!"
	MsgRegistered         = "Store registered and connected to Shipkia successfully!"
	MsgStoreNotFound      = "Store not found in Shipkia. Please register it first."
	MsgConnectionFailed   = "Connection failed"
	MsgInvalidResponse    = "Invalid response from Shipkia"
	MsgDisconnected       = "Disconnected from Shipkia"
	MsgSyncSuccessful     = "Sync successful! Connection and data updated."
	MsgSyncFailed         = "Sync failed. Please check your connection to Shipkia."
	msgConnectionFailedAt = "Connection failed: "
	msgErrorPrefix        = "Error: "
)

// Config holds the store identity the service connects with
type Config struct {
	// SiteURL is the public URL of the store
	SiteURL string
	// DefaultAppURL is used while no shipkia_app_url option is stored
	DefaultAppURL string
	// PluginVersion is reported on auto-sync and settings sync
	PluginVersion string
}

// Service runs the connection operations against the option and transient stores
type Service struct {
	options    connection.OptionStore
	transients connection.TransientStore
	platform   connection.Platform
	secrets    *SecretProvider
	config     Config
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time

	checking sync.Mutex // held while an auto-connect check runs
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics records remote calls and connection events
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates a new connection service
func NewService(
	options connection.OptionStore,
	transients connection.TransientStore,
	platform connection.Platform,
	secrets *SecretProvider,
	config Config,
	log *zap.Logger,
	opts ...Option,
) *Service {
	if config.DefaultAppURL == "" {
		config.DefaultAppURL = connection.DefaultAppURL
	}
	if config.PluginVersion == "" {
		config.PluginVersion = connection.DefaultPluginVersion
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		options:    options,
		transients: transients,
		platform:   platform,
		secrets:    secrets,
		config:     config,
		metrics:    nopMetrics{},
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreDomain returns the domain the store identifies itself with
func (s *Service) StoreDomain() string {
	return connection.StoreDomain(s.config.SiteURL)
}

// log returns the request-scoped logger with the store domain attached
func (s *Service) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger).With(zap.String("domain", s.StoreDomain()))
}

// appURL returns the API base URL, read on every call so a new manual URL takes effect immediately
func (s *Service) appURL(ctx context.Context) (string, error) {
	v, ok, err := s.options.Get(ctx, connection.OptionAppURL)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		v = s.config.DefaultAppURL
	}
	return connection.BaseURL(v), nil
}

func (s *Service) load(ctx context.Context) (connection.Connection, error) {
	values, err := s.options.GetMany(ctx, connection.ConnectionOptionKeys()...)
	if err != nil {
		return connection.Connection{}, err
	}
	return connection.FromOptions(values), nil
}

func (s *Service) flagSet(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.transients.Get(ctx, key)
	return ok, err
}

func (s *Service) setFlag(ctx context.Context, key string, ttl time.Duration) error {
	return s.transients.Set(ctx, key, connection.FlagValue, ttl)
}

// remoteCall times fn and records it under operation
func (s *Service) remoteCall(ctx context.Context, operation string, fn func() error) error {
	start := s.now()
	err := fn()
	s.metrics.RecordRemoteCall(ctx, operation, s.now().Sub(start), err)
	return err
}

// errorMessage renders an infrastructure failure for the admin
func errorMessage(err error) string {
	return msgErrorPrefix + err.Error()
}

// transportMessage strips the sentinel prefix from a transport failure
func transportMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, connection.ErrPlatformUnavailable) {
		msg = strings.TrimPrefix(msg, connection.ErrPlatformUnavailable.Error()+": ")
	}
	return msg
}
