package connection

import (
	"strconv"
	"time"
)

// Connection is the persisted state of the link with Shipkia
type Connection struct {
	Connected       bool
	AccessToken     string
	RefreshToken    string
	StoreID         string
	TokenExpiry     int64
	Platform        string
	PlatformURL     string
	ShipkiaURL      string
	ConnectedDomain string
}

// IsConnected reports whether the flag is set and an access token is present
func (c Connection) IsConnected() bool {
	return c.Connected && c.AccessToken != ""
}

// ExpiresAt returns the token expiry as a time, zero when unknown
func (c Connection) ExpiresAt() time.Time {
	if c.TokenExpiry <= 0 {
		return time.Time{}
	}
	return time.Unix(c.TokenExpiry, 0)
}

// TokenValid reports whether the access token is still valid at now
func (c Connection) TokenValid(now time.Time) bool {
	return c.AccessToken != "" && now.Unix() < c.TokenExpiry
}

// NeedsRefresh reports whether the access token expires within the refresh leeway.
// A missing expiry never triggers a refresh.
func (c Connection) NeedsRefresh(now time.Time) bool {
	if c.TokenExpiry <= 0 {
		return false
	}
	return now.Add(TokenRefreshLeeway).Unix() >= c.TokenExpiry
}

// TokenGrant carries the tokens handed out by the platform
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	StoreID      string
	PlatformURL  string
}

// Apply writes the grant onto c for a store connected at domain.
// The platform URL is kept when the grant carries none.
func (c *Connection) Apply(g TokenGrant, domain string, now time.Time) {
	c.Connected = true
	c.AccessToken = g.AccessToken
	c.RefreshToken = g.RefreshToken
	c.StoreID = g.StoreID
	c.TokenExpiry = now.Unix() + g.ExpiresIn
	c.Platform = DefaultPlatformName
	if g.PlatformURL != "" {
		c.PlatformURL = g.PlatformURL
		c.ShipkiaURL = g.PlatformURL
	}
	c.ConnectedDomain = domain
}

// ApplyRefresh updates the access token after a refresh exchange.
// A rotated refresh token replaces the stored one.
func (c *Connection) ApplyRefresh(g TokenGrant, now time.Time) {
	c.AccessToken = g.AccessToken
	if g.RefreshToken != "" {
		c.RefreshToken = g.RefreshToken
	}
	c.TokenExpiry = now.Unix() + g.ExpiresIn
}

// Options renders c as the option key/value pairs it is persisted as
func (c Connection) Options() map[string]string {
	connected := ""
	if c.Connected {
		connected = FlagValue
	}
	return map[string]string{
		OptionConnected:       connected,
		OptionAccessToken:     c.AccessToken,
		OptionRefreshToken:    c.RefreshToken,
		OptionStoreID:         c.StoreID,
		OptionTokenExpiry:     strconv.FormatInt(c.TokenExpiry, 10),
		OptionPlatform:        c.Platform,
		OptionPlatformURL:     c.PlatformURL,
		OptionShipkiaURL:      c.ShipkiaURL,
		OptionConnectedDomain: c.ConnectedDomain,
	}
}

// FromOptions rebuilds a Connection from persisted option values.
// Unknown or malformed values read as their zero value.
func FromOptions(values map[string]string) Connection {
	expiry, _ := strconv.ParseInt(values[OptionTokenExpiry], 10, 64)
	return Connection{
		Connected:       IsTruthy(values[OptionConnected]),
		AccessToken:     values[OptionAccessToken],
		RefreshToken:    values[OptionRefreshToken],
		StoreID:         values[OptionStoreID],
		TokenExpiry:     expiry,
		Platform:        values[OptionPlatform],
		PlatformURL:     values[OptionPlatformURL],
		ShipkiaURL:      values[OptionShipkiaURL],
		ConnectedDomain: values[OptionConnectedDomain],
	}
}

// Status is the read model exposed to the admin view
type Status struct {
	Connected       bool       `json:"connected"`
	StoreID         string     `json:"store_id,omitempty"`
	Platform        string     `json:"platform,omitempty"`
	PlatformURL     string     `json:"platform_url,omitempty"`
	ShipkiaURL      string     `json:"shipkia_url,omitempty"`
	ConnectedDomain string     `json:"connected_domain,omitempty"`
	AppURL          string     `json:"app_url"`
	TokenValid      bool       `json:"token_valid"`
	TokenExpiresAt  *time.Time `json:"token_expires_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	RecentlyChecked bool       `json:"recently_checked"`
}

// NewStatus builds the status view of c at now
func NewStatus(c Connection, appURL, lastError string, now time.Time) Status {
	if !c.IsConnected() {
		return Status{AppURL: appURL, LastError: lastError}
	}
	platform := c.Platform
	if platform == "" {
		platform = DefaultPlatformName
	}
	s := Status{
		Connected:       true,
		StoreID:         c.StoreID,
		Platform:        platform,
		PlatformURL:     c.PlatformURL,
		ShipkiaURL:      c.ShipkiaURL,
		ConnectedDomain: c.ConnectedDomain,
		AppURL:          appURL,
		TokenValid:      c.TokenValid(now),
		LastError:       lastError,
	}
	if exp := c.ExpiresAt(); !exp.IsZero() {
		exp = exp.UTC()
		s.TokenExpiresAt = &exp
	}
	return s
}

// Result is the outcome of a user-triggered connection operation
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
