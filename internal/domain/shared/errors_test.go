package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDomainError(CodeUnavailable, "Shipkia is unreachable", cause)

	assert.Equal(t, "Shipkia is unreachable", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, NewDomainError(CodeUnavailable, "other message"), "matches by code")
	assert.NotErrorIs(t, err, NewDomainError(CodeNotFound, "Resource not found"))

	var de *DomainError
	assert.True(t, errors.As(fmt.Errorf("handler: %w", err), &de))
	assert.Equal(t, "SERVICE_UNAVAILABLE", de.Code)
}
