package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/interfaces/http/middleware"
)

// JSONReader encodes v as a JSON request body. A nil v is an empty body.
func JSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	if v == nil {
		return http.NoBody
	}
	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}

// SignedPushRequest builds a platform push to path signed with secret at now
func SignedPushRequest(method, path, secret, body string, now time.Time) *http.Request {
	ts := strconv.FormatInt(now.Unix(), 10)
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TimestampHeader, ts)
	req.Header.Set(middleware.SignatureHeader, connection.SignPush(secret, ts, []byte(body)))
	return req
}

// DecodeBody parses a JSON response body. An empty body decodes to nil.
func DecodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if w.Body.Len() == 0 {
		return nil
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "Failed to parse JSON response: %s", w.Body.String())
	return body
}

// Data returns the data object of a success envelope
func Data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	require.Equal(t, true, body["success"], "Expected success envelope: %v", body)
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "Response has no data object: %v", body)
	return d
}

// AssertErrorCode asserts body is an error envelope carrying code
func AssertErrorCode(t *testing.T, body map[string]any, code string) {
	t.Helper()
	assert.Equal(t, false, body["success"], "Expected error envelope")
	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "Expected error object in response: %v", body)
	assert.Equal(t, code, errInfo["code"], "Unexpected error code")
}
