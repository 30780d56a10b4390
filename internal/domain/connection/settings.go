package connection

import (
	"context"
	"strings"
)

const (
	settingYes = "yes"
	settingNo  = "no"

	// DefaultTrackingButtonText is used when no button text is stored
	DefaultTrackingButtonText = "Track"
)

// TrackingSettings are the customer-facing display settings of the store
type TrackingSettings struct {
	Enabled    bool   `json:"tracking_enabled"`
	ButtonText string `json:"button_text"`
	NewTab     bool   `json:"new_tab"`
}

// DefaultTrackingSettings returns the settings of a fresh install
func DefaultTrackingSettings() TrackingSettings {
	return TrackingSettings{
		Enabled:    true,
		ButtonText: DefaultTrackingButtonText,
		NewTab:     true,
	}
}

// ParseTrackingSettings builds settings from stored option values.
// A missing value (found=false) takes the default.
func ParseTrackingSettings(enabled, buttonText, newTab OptionValue) TrackingSettings {
	s := DefaultTrackingSettings()
	if enabled.Found {
		s.Enabled = enabled.Value == settingYes
	}
	if buttonText.Found {
		s.ButtonText = buttonText.Value
	}
	if strings.TrimSpace(s.ButtonText) == "" {
		s.ButtonText = DefaultTrackingButtonText
	}
	if newTab.Found {
		s.NewTab = newTab.Value == settingYes
	}
	return s
}

// OptionValue is a stored option together with its presence
type OptionValue struct {
	Value string
	Found bool
}

// YesNo renders a flag in the stored yes/no form
func YesNo(b bool) string {
	if b {
		return settingYes
	}
	return settingNo
}

// SyncPayload is the settings document pushed to the platform
type SyncPayload struct {
	TrackingEnabled string `json:"tracking_enabled"`
	ButtonText      string `json:"button_text"`
	NewTab          string `json:"new_tab"`
	PluginVersion   string `json:"plugin_version"`
}

// NewSyncPayload prepares s for a sync_plugin_settings call
func NewSyncPayload(s TrackingSettings, pluginVersion string) SyncPayload {
	return SyncPayload{
		TrackingEnabled: YesNo(s.Enabled),
		ButtonText:      s.ButtonText,
		NewTab:          YesNo(s.NewTab),
		PluginVersion:   pluginVersion,
	}
}

// ReadTrackingSettings loads the display settings from store
func ReadTrackingSettings(ctx context.Context, store OptionStore) (TrackingSettings, error) {
	values, err := store.GetMany(ctx, OptionTrackingEnabled, OptionTrackingButtonText, OptionTrackingNewTab)
	if err != nil {
		return TrackingSettings{}, err
	}
	lookup := func(key string) OptionValue {
		v, ok := values[key]
		return OptionValue{Value: v, Found: ok}
	}
	return ParseTrackingSettings(
		lookup(OptionTrackingEnabled),
		lookup(OptionTrackingButtonText),
		lookup(OptionTrackingNewTab),
	), nil
}

// Options renders s as the option values it is persisted as
func (s TrackingSettings) Options() map[string]string {
	return map[string]string{
		OptionTrackingEnabled:    YesNo(s.Enabled),
		OptionTrackingButtonText: s.ButtonText,
		OptionTrackingNewTab:     YesNo(s.NewTab),
	}
}
