package connection

import (
	"errors"

	"github.com/shipkia/connector/internal/domain/shared"
)

// Common connection errors
var (
	// ErrNotConnected is returned when an operation needs a connected store
	ErrNotConnected = errors.New("connection: store is not connected to Shipkia")

	// ErrTokenRefreshFailed is returned when the refresh exchange did not yield a token
	ErrTokenRefreshFailed = errors.New("connection: token refresh failed")

	// ErrNoRefreshToken is returned when a refresh is needed but none is stored
	ErrNoRefreshToken = errors.New("connection: no refresh token stored")

	// ErrInvalidAppURL is returned when a manual connect is given an unusable URL
	ErrInvalidAppURL = errors.New("connection: invalid Shipkia URL")

	// ErrPlatformUnavailable is returned when the Shipkia platform could not be reached
	ErrPlatformUnavailable = errors.New("connection: platform temporarily unavailable")

	// ErrPlatformRequestFailed is returned when the platform answered with an error status
	ErrPlatformRequestFailed = errors.New("connection: platform request failed")

	// ErrPlatformInvalidResponse is returned when the response body is not a message envelope
	ErrPlatformInvalidResponse = errors.New("connection: invalid response from platform")

	// ErrSecretUnavailable is returned when no plugin secret could be resolved or generated
	ErrSecretUnavailable = errors.New("connection: plugin secret unavailable")

	// ErrInvalidSignature is returned when a signed platform request does not verify
	ErrInvalidSignature = errors.New("connection: invalid request signature")

	// ErrSignatureExpired is returned when a signed platform request is outside the tolerance window
	ErrSignatureExpired = errors.New("connection: request signature expired")

	// ErrCheckInProgress is returned when an auto-connect check starts while another one runs
	ErrCheckInProgress = shared.NewDomainError(shared.CodeConflict, "A connection check is already running")
)
