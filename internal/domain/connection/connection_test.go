package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Connection Tests
// ---------------------------------------------------------------------------

func TestConnection_IsConnected(t *testing.T) {
	tests := []struct {
		name     string
		conn     Connection
		expected bool
	}{
		{"flag and token", Connection{Connected: true, AccessToken: "tok"}, true},
		{"flag without token", Connection{Connected: true}, false},
		{"token without flag", Connection{AccessToken: "tok"}, false},
		{"empty", Connection{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.conn.IsConnected())
		})
	}
}

func TestConnection_TokenValidity(t *testing.T) {
	now := time.Unix(1_000_000, 0)

	t.Run("valid before expiry", func(t *testing.T) {
		c := Connection{AccessToken: "tok", TokenExpiry: now.Unix() + 3600}
		assert.True(t, c.TokenValid(now))
		assert.False(t, c.NeedsRefresh(now))
	})

	t.Run("invalid at expiry", func(t *testing.T) {
		c := Connection{AccessToken: "tok", TokenExpiry: now.Unix()}
		assert.False(t, c.TokenValid(now))
		assert.True(t, c.NeedsRefresh(now))
	})

	t.Run("refresh inside leeway", func(t *testing.T) {
		c := Connection{AccessToken: "tok", TokenExpiry: now.Unix() + 300}
		assert.True(t, c.TokenValid(now))
		assert.True(t, c.NeedsRefresh(now))
	})

	t.Run("no refresh just outside leeway", func(t *testing.T) {
		c := Connection{AccessToken: "tok", TokenExpiry: now.Unix() + 301}
		assert.False(t, c.NeedsRefresh(now))
	})

	t.Run("missing expiry never refreshes", func(t *testing.T) {
		c := Connection{AccessToken: "tok"}
		assert.False(t, c.NeedsRefresh(now))
		assert.False(t, c.TokenValid(now))
		assert.True(t, c.ExpiresAt().IsZero())
	})
}

func TestConnection_Apply(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	c := Connection{PlatformURL: "https://old.example.com", ShipkiaURL: "https://old.example.com"}

	c.Apply(TokenGrant{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		StoreID:      "STORE-1",
	}, "https://shop.example.com", now)

	assert.True(t, c.IsConnected())
	assert.Equal(t, "refresh", c.RefreshToken)
	assert.Equal(t, "STORE-1", c.StoreID)
	assert.Equal(t, now.Unix()+3600, c.TokenExpiry)
	assert.Equal(t, DefaultPlatformName, c.Platform)
	assert.Equal(t, "https://old.example.com", c.PlatformURL, "platform url kept when grant has none")
	assert.Equal(t, "https://shop.example.com", c.ConnectedDomain)

	c.Apply(TokenGrant{AccessToken: "a2", ExpiresIn: 60, PlatformURL: "https://new.example.com"}, "https://shop.example.com", now)
	assert.Equal(t, "https://new.example.com", c.PlatformURL)
	assert.Equal(t, "https://new.example.com", c.ShipkiaURL)
}

func TestConnection_ApplyRefresh(t *testing.T) {
	now := time.Unix(2_000_000, 0)
	c := Connection{Connected: true, AccessToken: "old", RefreshToken: "keep", TokenExpiry: 1}

	c.ApplyRefresh(TokenGrant{AccessToken: "new", ExpiresIn: 100}, now)
	assert.Equal(t, "new", c.AccessToken)
	assert.Equal(t, "keep", c.RefreshToken)
	assert.Equal(t, now.Unix()+100, c.TokenExpiry)

	c.ApplyRefresh(TokenGrant{AccessToken: "newer", RefreshToken: "rotated", ExpiresIn: 100}, now)
	assert.Equal(t, "rotated", c.RefreshToken)
}

func TestConnection_OptionsRoundTrip(t *testing.T) {
	c := Connection{
		Connected:       true,
		AccessToken:     "access",
		RefreshToken:    "refresh",
		StoreID:         "STORE-1",
		TokenExpiry:     12345,
		Platform:        DefaultPlatformName,
		PlatformURL:     "https://platform.example.com",
		ShipkiaURL:      "https://platform.example.com",
		ConnectedDomain: "https://shop.example.com",
	}

	opts := c.Options()
	assert.Equal(t, FlagValue, opts[OptionConnected])
	assert.Equal(t, "12345", opts[OptionTokenExpiry])
	assert.Len(t, opts, len(ConnectionOptionKeys()))

	assert.Equal(t, c, FromOptions(opts))
}

func TestFromOptions_Malformed(t *testing.T) {
	c := FromOptions(map[string]string{
		OptionConnected:   "0",
		OptionTokenExpiry: "soon",
	})
	assert.False(t, c.Connected)
	assert.Zero(t, c.TokenExpiry)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "yes"} {
		assert.True(t, IsTruthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "no"} {
		assert.False(t, IsTruthy(v), v)
	}
}

// ---------------------------------------------------------------------------
// Status Tests
// ---------------------------------------------------------------------------

func TestNewStatus(t *testing.T) {
	now := time.Unix(1_000_000, 0)

	t.Run("disconnected hides connection data", func(t *testing.T) {
		s := NewStatus(Connection{Connected: true, StoreID: "STORE-1"}, DefaultAppURL, "boom", now)
		assert.False(t, s.Connected)
		assert.Empty(t, s.StoreID)
		assert.False(t, s.TokenValid)
		assert.Nil(t, s.TokenExpiresAt)
		assert.Equal(t, DefaultAppURL, s.AppURL)
		assert.Equal(t, "boom", s.LastError)
	})

	t.Run("connected", func(t *testing.T) {
		c := Connection{Connected: true, AccessToken: "tok", StoreID: "STORE-1", TokenExpiry: now.Unix() + 10}
		s := NewStatus(c, DefaultAppURL, "", now)
		assert.True(t, s.Connected)
		assert.True(t, s.TokenValid)
		assert.Equal(t, DefaultPlatformName, s.Platform)
		require.NotNil(t, s.TokenExpiresAt)
		assert.Equal(t, now.Unix()+10, s.TokenExpiresAt.Unix())
	})

	t.Run("connected with expired token", func(t *testing.T) {
		c := Connection{Connected: true, AccessToken: "tok", TokenExpiry: now.Unix() - 1}
		assert.False(t, NewStatus(c, DefaultAppURL, "", now).TokenValid)
	})
}

// ---------------------------------------------------------------------------
// TrackingSettings Tests
// ---------------------------------------------------------------------------

func TestParseTrackingSettings(t *testing.T) {
	missing := OptionValue{}

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, DefaultTrackingSettings(), ParseTrackingSettings(missing, missing, missing))
	})

	t.Run("stored values", func(t *testing.T) {
		s := ParseTrackingSettings(
			OptionValue{Value: "no", Found: true},
			OptionValue{Value: "Where is it?", Found: true},
			OptionValue{Value: "no", Found: true},
		)
		assert.False(t, s.Enabled)
		assert.Equal(t, "Where is it?", s.ButtonText)
		assert.False(t, s.NewTab)
	})

	t.Run("empty button text falls back", func(t *testing.T) {
		s := ParseTrackingSettings(missing, OptionValue{Value: "  ", Found: true}, missing)
		assert.Equal(t, DefaultTrackingButtonText, s.ButtonText)
	})

	t.Run("anything but yes is off", func(t *testing.T) {
		s := ParseTrackingSettings(OptionValue{Value: "1", Found: true}, missing, missing)
		assert.False(t, s.Enabled)
	})
}

func TestNewSyncPayload(t *testing.T) {
	p := NewSyncPayload(TrackingSettings{Enabled: true, ButtonText: "Track", NewTab: false}, "1.2.0")
	assert.Equal(t, SyncPayload{
		TrackingEnabled: "yes",
		ButtonText:      "Track",
		NewTab:          "no",
		PluginVersion:   "1.2.0",
	}, p)
}
