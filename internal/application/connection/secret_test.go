package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipkia/connector/internal/domain/connection"
)

func TestSecretProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the consumer secret", func(t *testing.T) {
		options := newFakeOptionStore(map[string]string{connection.OptionPluginSecret: "stored"})
		p := NewSecretProvider(fakeConsumerSecrets{secret: "consumer"}, options, nil)

		secret, err := p.Secret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "consumer", secret)
	})

	t.Run("falls back to the stored secret", func(t *testing.T) {
		options := newFakeOptionStore(map[string]string{connection.OptionPluginSecret: "stored"})
		p := NewSecretProvider(fakeConsumerSecrets{err: errors.New("no such table")}, options, nil)

		secret, err := p.Secret(ctx)
		require.NoError(t, err)
		assert.Equal(t, "stored", secret)
	})

	t.Run("generates and stores a secret once", func(t *testing.T) {
		options := newFakeOptionStore(nil)
		p := NewSecretProvider(nil, options, nil)

		first, err := p.Secret(ctx)
		require.NoError(t, err)
		assert.Len(t, first, GeneratedSecretLength)
		assert.Equal(t, first, options.value(connection.OptionPluginSecret))

		second, err := p.Secret(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("reports store failures", func(t *testing.T) {
		options := newFakeOptionStore(nil)
		options.err = errors.New("disk full")
		p := NewSecretProvider(nil, options, nil)

		_, err := p.Secret(ctx)
		assert.ErrorIs(t, err, connection.ErrSecretUnavailable)
	})
}

func TestGenerateSecret(t *testing.T) {
	secret, err := generateSecret(256)
	require.NoError(t, err)
	for _, r := range secret {
		assert.Contains(t, secretAlphabet, string(r))
	}
}
