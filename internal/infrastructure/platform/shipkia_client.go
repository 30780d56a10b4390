package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
)

// Plugin endpoint paths, relative to the method prefix
const (
	methodPrefix = "/api/method/bu_ecommerce_integrations.api.woocommerce."

	PathVerifyConnection = "plugin_auth.verify_plugin_connection"
	PathExchangeToken    = "plugin_auth.exchange_plugin_token"
	PathRefreshToken     = "plugin_auth.refresh_plugin_token"
	PathSyncSettings     = "plugin_auth.sync_plugin_settings"
	PathDisconnect       = "plugin_auth.disconnect_plugin"
	PathAutoSync         = "auto_sync.auto_sync"
)

// ShipkiaClient implements connection.Platform over the Shipkia plugin HTTP API
type ShipkiaClient struct {
	config     *ShipkiaConfig
	httpClient *http.Client
	logger     *zap.Logger
}

var _ connection.Platform = (*ShipkiaClient)(nil)

// NewShipkiaClient creates a new Shipkia client with the given configuration.
// Timeouts are applied per call, so a nil httpClient uses a plain http.Client.
func NewShipkiaClient(config *ShipkiaConfig, httpClient *http.Client, logger *zap.Logger) (*ShipkiaClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipkiaClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// EndpointURL returns the full URL of a plugin endpoint under baseURL
func EndpointURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + methodPrefix + path
}

// ---------------------------------------------------------------------------
// Plugin Auth Operations
// ---------------------------------------------------------------------------

// VerifyConnection asks Shipkia whether the signed domain is a registered store
func (c *ShipkiaClient) VerifyConnection(ctx context.Context, baseURL string, req connection.VerifyRequest) (*connection.VerifyResponse, error) {
	form := url.Values{}
	form.Set("domain", req.Domain)
	form.Set("plugin_signature", req.Signature)
	form.Set("timestamp", req.Timestamp)

	msg, err := c.call(ctx, baseURL, PathVerifyConnection, form, nil, c.timeout())
	if err != nil {
		return nil, err
	}

	return &connection.VerifyResponse{
		Connected:   bool(msg.Connected),
		TempToken:   string(msg.TempToken),
		StoreID:     string(msg.StoreID),
		PlatformURL: string(msg.PlatformURL),
		Status:      string(msg.Status),
		Message:     string(msg.Message),
	}, nil
}

// ExchangeToken trades a temporary token for access and refresh tokens
func (c *ShipkiaClient) ExchangeToken(ctx context.Context, baseURL string, req connection.ExchangeRequest) (*connection.TokenResponse, error) {
	form := url.Values{}
	form.Set("temp_token", req.TempToken)
	form.Set("store_domain", req.StoreDomain)
	form.Set("store_id", req.StoreID)

	msg, err := c.call(ctx, baseURL, PathExchangeToken, form, nil, c.timeout())
	if err != nil {
		return nil, err
	}
	return toTokenResponse(msg), nil
}

// RefreshToken asks for a new access token
func (c *ShipkiaClient) RefreshToken(ctx context.Context, baseURL string, req connection.RefreshRequest) (*connection.TokenResponse, error) {
	form := url.Values{}
	form.Set("refresh_token", req.RefreshToken)
	form.Set("store_domain", req.StoreDomain)

	msg, err := c.call(ctx, baseURL, PathRefreshToken, form, nil, c.timeout())
	if err != nil {
		return nil, err
	}
	return toTokenResponse(msg), nil
}

// AutoSync registers the store with Shipkia or refreshes an existing registration
func (c *ShipkiaClient) AutoSync(ctx context.Context, baseURL string, req connection.AutoSyncRequest) (*connection.AutoSyncResponse, error) {
	form := url.Values{}
	form.Set("domain", req.Domain)
	form.Set("platform", req.Platform)
	form.Set("plugin", req.Plugin)
	form.Set("plugin_version", req.PluginVersion)
	form.Set("secret", req.Secret)

	msg, err := c.call(ctx, baseURL, PathAutoSync, form, nil, c.timeout())
	if err != nil {
		return nil, err
	}

	return &connection.AutoSyncResponse{
		Connected:    bool(msg.Connected),
		Message:      string(msg.Message),
		AccessToken:  string(msg.AccessToken),
		RefreshToken: string(msg.RefreshToken),
		StoreID:      string(msg.StoreID),
		ExpiresIn:    int64(msg.ExpiresIn),
		PlatformURL:  string(msg.PlatformURL),
	}, nil
}

// SyncSettings pushes the display settings with the bearer access token
func (c *ShipkiaClient) SyncSettings(ctx context.Context, baseURL string, req connection.SyncSettingsRequest) error {
	settings, err := json.Marshal(req.Settings)
	if err != nil {
		return fmt.Errorf("shipkia: failed to marshal settings: %w", err)
	}

	form := url.Values{}
	form.Set("domain", req.Domain)
	form.Set("settings", string(settings))

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+req.AccessToken)

	body, status, err := c.doRequest(ctx, baseURL, PathSyncSettings, form, headers, c.timeout())
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		if status >= http.StatusBadRequest {
			return fmt.Errorf("%w: HTTP %d", connection.ErrPlatformRequestFailed, status)
		}
		return connection.ErrPlatformInvalidResponse
	}
	return nil
}

// Disconnect notifies Shipkia that the store disconnected. The answer is not inspected.
func (c *ShipkiaClient) Disconnect(ctx context.Context, baseURL string, req connection.DisconnectRequest) error {
	form := url.Values{}
	form.Set("store_domain", req.StoreDomain)
	form.Set("access_token", req.AccessToken)

	_, _, err := c.doRequest(ctx, baseURL, PathDisconnect, form, nil,
		time.Duration(c.config.DisconnectTimeoutSeconds)*time.Second)
	return err
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

func (c *ShipkiaClient) timeout() time.Duration {
	return time.Duration(c.config.TimeoutSeconds) * time.Second
}

// call performs a request and decodes the message envelope.
// The envelope is honoured whatever the HTTP status, as the plugin endpoints
// report business failures inside it.
func (c *ShipkiaClient) call(ctx context.Context, baseURL, path string, form url.Values, headers http.Header, timeout time.Duration) (*shipkiaMessage, error) {
	body, status, err := c.doRequest(ctx, baseURL, path, form, headers, timeout)
	if err != nil {
		return nil, err
	}

	msg, err := decodeMessage(body)
	if err != nil {
		if status >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: HTTP %d", connection.ErrPlatformRequestFailed, status)
		}
		return nil, err
	}
	return msg, nil
}

// doRequest posts a form-encoded body to a plugin endpoint
func (c *ShipkiaClient) doRequest(ctx context.Context, baseURL, path string, form url.Values, headers http.Header, timeout time.Duration) ([]byte, int, error) {
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, 0, err
	}
	endpoint := EndpointURL(base, path)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("shipkia: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Shipkia request failed",
			zap.String("endpoint", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, 0, fmt.Errorf("%w: %v", connection.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", connection.ErrPlatformUnavailable, err)
	}

	c.logger.Debug("Shipkia request completed",
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return body, resp.StatusCode, nil
}

// decodeMessage extracts the message object from a response body.
// A message that is not an object decodes to an empty message.
func decodeMessage(body []byte) (*shipkiaMessage, error) {
	var env shipkiaEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", connection.ErrPlatformInvalidResponse, err)
	}
	raw := bytes.TrimSpace(env.Message)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, connection.ErrPlatformInvalidResponse
	}

	msg := &shipkiaMessage{}
	if raw[0] != '{' {
		return msg, nil
	}
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", connection.ErrPlatformInvalidResponse, err)
	}
	return msg, nil
}

func toTokenResponse(msg *shipkiaMessage) *connection.TokenResponse {
	return &connection.TokenResponse{
		Status:       string(msg.Status),
		Message:      string(msg.Message),
		AccessToken:  string(msg.AccessToken),
		RefreshToken: string(msg.RefreshToken),
		ExpiresIn:    int64(msg.ExpiresIn),
	}
}

// UserAgent builds the User-Agent header for the given plugin version and site
func UserAgent(pluginVersion, siteURL string) string {
	ua := "ShipkiaConnector/" + pluginVersion
	if siteURL != "" {
		ua += "; " + siteURL
	}
	return ua
}

