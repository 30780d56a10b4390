package connection

import (
	"net/url"
	"strings"
)

// ValidateAppURL checks that raw is an absolute URL with a scheme and a host
func ValidateAppURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidAppURL
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return ErrInvalidAppURL
	}
}

// BaseURL strips the trailing slashes of a stored app URL
func BaseURL(appURL string) string {
	return strings.TrimRight(strings.TrimSpace(appURL), "/")
}
