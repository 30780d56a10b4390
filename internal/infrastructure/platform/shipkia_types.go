package platform

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// shipkiaEnvelope is the outer document of every plugin endpoint response
type shipkiaEnvelope struct {
	Message json.RawMessage `json:"message"`
}

// shipkiaMessage is the union of the fields the plugin endpoints return
type shipkiaMessage struct {
	Connected    literalTrue `json:"connected"`
	Status       flexString  `json:"status"`
	Message      flexString  `json:"message"`
	TempToken    flexString  `json:"temp_token"`
	StoreID      flexString  `json:"store_id"`
	PlatformURL  flexString  `json:"platform_url"`
	AccessToken  flexString  `json:"access_token"`
	RefreshToken flexString  `json:"refresh_token"`
	ExpiresIn    flexInt     `json:"expires_in"`
}

// literalTrue is set only by the JSON literal true; any other value reads as false
type literalTrue bool

func (b *literalTrue) UnmarshalJSON(data []byte) error {
	*b = literalTrue(bytes.Equal(bytes.TrimSpace(data), []byte("true")))
	return nil
}

// flexString accepts a JSON string or number. Other values read as empty.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*s = ""
		return nil
	}
	*s = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Fractions are truncated.
type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		*i = 0
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*i = flexInt(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*i = 0
		return nil
	}
	*i = flexInt(int64(f))
	return nil
}
