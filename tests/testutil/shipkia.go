// Package testutil provides the fake Shipkia platform and HTTP helpers shared
// by the connector's API and integration tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/platform"
)

// Values the fake platform hands out for a known store
const (
	FakeTempToken    = "temp-1"
	FakeStoreID      = "STORE-1"
	FakePlatformURL  = "https://tenant.shipkia.com"
	FakeAccessToken  = "access-1"
	FakeRefreshToken = "refresh-1"
)

// FakeShipkia is an httptest server answering the plugin endpoints the way a
// Shipkia tenant that knows the store does
type FakeShipkia struct {
	Server *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	forms    map[string]url.Values
	override map[string]any
}

// NewFakeShipkia starts a fake platform closed on test cleanup
func NewFakeShipkia(t *testing.T) *FakeShipkia {
	t.Helper()
	f := &FakeShipkia{
		calls:    make(map[string]int),
		forms:    make(map[string]url.Values),
		override: make(map[string]any),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL to store as the Shipkia app URL
func (f *FakeShipkia) URL() string {
	return f.Server.URL
}

// Respond replaces the message returned by endpoint, one of the platform.Path constants
func (f *FakeShipkia) Respond(endpoint string, message any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.override[endpoint] = message
}

// Calls returns how often endpoint was called
func (f *FakeShipkia) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// LastForm returns the value of field in the last request to endpoint
func (f *FakeShipkia) LastForm(endpoint, field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[endpoint].Get(field)
}

func (f *FakeShipkia) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	endpoint := ""
	for _, p := range []string{
		platform.PathVerifyConnection,
		platform.PathExchangeToken,
		platform.PathRefreshToken,
		platform.PathSyncSettings,
		platform.PathDisconnect,
		platform.PathAutoSync,
	} {
		if strings.HasSuffix(r.URL.Path, p) {
			endpoint = p
			break
		}
	}

	f.mu.Lock()
	var message any
	if endpoint != "" {
		f.calls[endpoint]++
		f.forms[endpoint] = r.PostForm
		if m, ok := f.override[endpoint]; ok {
			message = m
		} else {
			message = defaultMessage(endpoint)
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if endpoint == "" {
		w.WriteHeader(http.StatusNotFound)
		message = "not found"
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"message": message})
}

func defaultMessage(endpoint string) any {
	switch endpoint {
	case platform.PathVerifyConnection:
		return map[string]any{
			"connected":    true,
			"temp_token":   FakeTempToken,
			"store_id":     FakeStoreID,
			"platform_url": FakePlatformURL,
		}
	case platform.PathExchangeToken, platform.PathRefreshToken:
		return map[string]any{
			"status":        connection.StatusSuccess,
			"access_token":  FakeAccessToken,
			"refresh_token": FakeRefreshToken,
			"expires_in":    3600,
		}
	case platform.PathAutoSync:
		return map[string]any{
			"connected":     true,
			"access_token":  FakeAccessToken,
			"refresh_token": FakeRefreshToken,
			"store_id":      FakeStoreID,
			"expires_in":    3600,
			"platform_url":  FakePlatformURL,
		}
	default:
		return map[string]any{"status": connection.StatusSuccess}
	}
}
