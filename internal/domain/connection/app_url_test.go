package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAppURL(t *testing.T) {
	valid := []string{"https://app.shipkia.com", "http://localhost:8000/", " https://staging.shipkia.com "}
	for _, raw := range valid {
		assert.NoError(t, ValidateAppURL(raw), raw)
	}

	invalid := []string{"", "app.shipkia.com", "ftp://app.shipkia.com", "https://", "://broken"}
	for _, raw := range invalid {
		assert.ErrorIs(t, ValidateAppURL(raw), ErrInvalidAppURL, raw)
	}
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://app.shipkia.com", BaseURL("https://app.shipkia.com//"))
	assert.Equal(t, "https://app.shipkia.com", BaseURL(" https://app.shipkia.com "))
}
