package connection

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureTimestampLayout is the UTC layout the platform expects for plugin signatures
const SignatureTimestampLayout = "2006-01-02T15:04:05Z"

// PushSignatureTolerance bounds the clock skew accepted on platform push requests
const PushSignatureTolerance = 5 * time.Minute

// NormalizeDomain trims whitespace, the trailing slash and the http(s) scheme
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimRight(d, "/")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return d
}

// StoreDomain is the site URL as sent in store_domain fields
func StoreDomain(siteURL string) string {
	return strings.TrimRight(strings.TrimSpace(siteURL), "/")
}

// FormatSignatureTimestamp formats t the way Sign expects it
func FormatSignatureTimestamp(t time.Time) string {
	return t.UTC().Format(SignatureTimestampLayout)
}

// Sign returns the hex HMAC-SHA256 plugin signature of domain and timestamp
func Sign(secret, domain, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(NormalizeDomain(domain) + ":" + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPush returns the signature the platform sends with a tracking push
func SignPush(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPush checks a push signature against body and the unix timestamp header
func VerifyPush(secret, timestamp, signature string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > PushSignatureTolerance {
		return ErrSignatureExpired
	}
	expected := SignPush(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}
