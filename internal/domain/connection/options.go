package connection

import "time"

// Option keys persisted in the OptionStore
const (
	OptionConnected       = "shipkia_connected"
	OptionAccessToken     = "shipkia_access_token"
	OptionRefreshToken    = "shipkia_refresh_token"
	OptionStoreID         = "shipkia_store_id"
	OptionTokenExpiry     = "shipkia_token_expiry"
	OptionPlatform        = "shipkia_platform"
	OptionPlatformURL     = "shipkia_platform_url"
	OptionShipkiaURL      = "shipkia_shipkia_url"
	OptionConnectedDomain = "shipkia_connected_domain"
	OptionPluginSecret    = "shipkia_plugin_secret"
	OptionAppURL          = "shipkia_app_url"

	OptionTrackingEnabled    = "shipkia_tracking_enabled"
	OptionTrackingButtonText = "shipkia_tracking_button_text"
	OptionTrackingNewTab     = "shipkia_tracking_new_tab"
)

// Transient keys kept in the TransientStore
const (
	TransientConnectionVerified  = "shipkia_connection_verified"
	TransientTriggerAutoConnect  = "shipkia_trigger_auto_connect"
	TransientAutoConnectChecked  = "shipkia_auto_connect_checked"
	TransientAutoConnectSettings = "shipkia_auto_connect_checked_settings"
	TransientConnectionError     = "shipkia_connection_error"
)

// Transient lifetimes
const (
	VerifyInterval             = 12 * time.Hour
	VerifyIntervalSettingsPage = time.Hour
	AutoConnectCheckInterval   = time.Hour
	SettingsPageCheckInterval  = 5 * time.Minute
	TriggerAutoConnectTTL      = time.Minute
	ConnectionErrorTTL         = time.Hour
)

// TokenRefreshLeeway is how long before expiry an access token is refreshed
const TokenRefreshLeeway = 300 * time.Second

const (
	DefaultPlatformName  = "woocommerce"
	DefaultAppURL        = "https://app.shipkia.com"
	DefaultPluginSlug    = "shipkia-shipment-tracking"
	DefaultPluginVersion = "1.0.0"

	// FlagValue is written for the connected option and boolean transients
	FlagValue = "1"
)

// ConnectionOptionKeys lists every option cleared by a local disconnect
func ConnectionOptionKeys() []string {
	return []string{
		OptionConnected,
		OptionAccessToken,
		OptionRefreshToken,
		OptionStoreID,
		OptionTokenExpiry,
		OptionPlatform,
		OptionPlatformURL,
		OptionShipkiaURL,
		OptionConnectedDomain,
	}
}

// IsTruthy reports whether a stored flag value reads as true
func IsTruthy(value string) bool {
	switch value {
	case FlagValue, "true", settingYes:
		return true
	default:
		return false
	}
}
