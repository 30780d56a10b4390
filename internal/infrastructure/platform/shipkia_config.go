package platform

import (
	"errors"
	"net/url"
	"strings"
)

// ShipkiaConfig holds configuration for the Shipkia plugin API client
type ShipkiaConfig struct {
	// TimeoutSeconds is the HTTP timeout of every call except disconnect
	TimeoutSeconds int
	// DisconnectTimeoutSeconds bounds the best-effort disconnect notification
	DisconnectTimeoutSeconds int
	// UserAgent is sent with every request
	UserAgent string
	// MaxResponseBytes limits how much of a response body is read
	MaxResponseBytes int64
}

const (
	// DefaultTimeoutSeconds is the timeout of the plugin endpoints
	DefaultTimeoutSeconds = 15
	// DefaultDisconnectTimeoutSeconds is the timeout of disconnect_plugin
	DefaultDisconnectTimeoutSeconds = 5
	// defaultMaxResponseBytes limits the response body size to prevent memory exhaustion
	defaultMaxResponseBytes = 1 * 1024 * 1024
)

// Errors for Shipkia client configuration
var (
	ErrShipkiaConfigInvalidTimeout = errors.New("shipkia: timeout must not be negative")
	ErrShipkiaBaseURLRequired      = errors.New("shipkia: API base URL is required")
	ErrShipkiaBaseURLInvalid       = errors.New("shipkia: API base URL must be an absolute http(s) URL")
)

// NewShipkiaConfig creates a client configuration with defaults
func NewShipkiaConfig(userAgent string) *ShipkiaConfig {
	return &ShipkiaConfig{
		TimeoutSeconds:           DefaultTimeoutSeconds,
		DisconnectTimeoutSeconds: DefaultDisconnectTimeoutSeconds,
		UserAgent:                userAgent,
		MaxResponseBytes:         defaultMaxResponseBytes,
	}
}

// Validate validates the configuration and fills unset values with defaults
func (c *ShipkiaConfig) Validate() error {
	if c.TimeoutSeconds < 0 || c.DisconnectTimeoutSeconds < 0 {
		return ErrShipkiaConfigInvalidTimeout
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.DisconnectTimeoutSeconds == 0 {
		c.DisconnectTimeoutSeconds = DefaultDisconnectTimeoutSeconds
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = defaultMaxResponseBytes
	}
	return nil
}

// NormalizeBaseURL trims surrounding whitespace and trailing slashes from an API base URL
func NormalizeBaseURL(baseURL string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if u == "" {
		return "", ErrShipkiaBaseURLRequired
	}
	if err := ValidateBaseURL(u); err != nil {
		return "", err
	}
	return u, nil
}

// ValidateBaseURL checks that rawURL is an absolute http or https URL with a host
func ValidateBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrShipkiaBaseURLInvalid
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrShipkiaBaseURLInvalid
	}
	if parsed.Host == "" {
		return ErrShipkiaBaseURLInvalid
	}
	return nil
}
