package connection

import (
	"context"
	"time"
)

// OptionStore persists the flat key-value options of the store
type OptionStore interface {
	// Get returns the value of key and whether it is set
	Get(ctx context.Context, key string) (string, bool, error)
	// GetMany returns the values of the set keys, absent keys are omitted
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	// Set creates or replaces key
	Set(ctx context.Context, key, value string) error
	// SetMany creates or replaces every key in values atomically
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes keys, missing keys are ignored
	Delete(ctx context.Context, keys ...string) error
}

// TransientStore keeps short-lived values that expire on their own
type TransientStore interface {
	// Get returns the value of key and whether it is set and unexpired
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key for ttl
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes keys, missing keys are ignored
	Delete(ctx context.Context, keys ...string) error
}

// ConsumerSecretSource looks up the store's REST API consumer secret
type ConsumerSecretSource interface {
	// LatestReadWriteSecret returns the newest read_write consumer secret, if any
	LatestReadWriteSecret(ctx context.Context) (string, bool, error)
}

// ---------------------------------------------------------------------------
// Platform port
// ---------------------------------------------------------------------------

// Platform is the port for the remote Shipkia plugin endpoints.
// Every call takes the API base URL it is addressed to.
type Platform interface {
	VerifyConnection(ctx context.Context, baseURL string, req VerifyRequest) (*VerifyResponse, error)
	ExchangeToken(ctx context.Context, baseURL string, req ExchangeRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, baseURL string, req RefreshRequest) (*TokenResponse, error)
	AutoSync(ctx context.Context, baseURL string, req AutoSyncRequest) (*AutoSyncResponse, error)
	SyncSettings(ctx context.Context, baseURL string, req SyncSettingsRequest) error
	Disconnect(ctx context.Context, baseURL string, req DisconnectRequest) error
}

// VerifyRequest asks whether the store is registered with Shipkia
type VerifyRequest struct {
	Domain    string
	Signature string
	Timestamp string
}

// VerifyResponse is the answer of verify_plugin_connection
type VerifyResponse struct {
	Connected   bool
	TempToken   string
	StoreID     string
	PlatformURL string
	Status      string
	Message     string
}

// StatusNotFound is the verify status of a store unknown to Shipkia
const StatusNotFound = "not_found"

// StatusSuccess is the status of a successful token exchange or refresh
const StatusSuccess = "success"

// IsNotFound reports whether the platform does not know the store
func (r *VerifyResponse) IsNotFound() bool {
	return r.Status == StatusNotFound
}

// ExchangeRequest trades a temporary token for long-lived tokens
type ExchangeRequest struct {
	TempToken   string
	StoreDomain string
	StoreID     string
}

// RefreshRequest asks for a new access token
type RefreshRequest struct {
	RefreshToken string
	StoreDomain  string
}

// TokenResponse is the answer of the exchange and refresh endpoints
type TokenResponse struct {
	Status       string
	Message      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// IsSuccess reports whether the platform granted the tokens
func (r *TokenResponse) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// AutoSyncRequest registers or updates the store with Shipkia
type AutoSyncRequest struct {
	Domain        string
	Platform      string
	Plugin        string
	PluginVersion string
	Secret        string
}

// AutoSyncResponse is the answer of auto_sync
type AutoSyncResponse struct {
	Connected    bool
	Message      string
	AccessToken  string
	RefreshToken string
	StoreID      string
	ExpiresIn    int64
	PlatformURL  string
}

// Grant returns the tokens carried by the response
func (r *AutoSyncResponse) Grant() TokenGrant {
	return TokenGrant{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		StoreID:      r.StoreID,
		PlatformURL:  r.PlatformURL,
	}
}

// SyncSettingsRequest pushes the local display settings
type SyncSettingsRequest struct {
	Domain      string
	AccessToken string
	Settings    SyncPayload
}

// DisconnectRequest notifies the platform that the store disconnected
type DisconnectRequest struct {
	StoreDomain string
	AccessToken string
}
