package connection

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/shipkia/connector/internal/domain/connection"
)

// GeneratedSecretLength is the length of a generated plugin secret
const GeneratedSecretLength = 64

// secretAlphabet matches a password with special and extra special characters
const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" +
	"!@#$%^&*()-_ []{}<>~`+=,.;:/?|"

// SecretProvider resolves the secret used to sign platform requests.
// The newest read_write consumer secret wins, then the stored plugin secret,
// then a freshly generated one that is persisted.
type SecretProvider struct {
	mu       sync.Mutex
	consumer connection.ConsumerSecretSource
	options  connection.OptionStore
	logger   *zap.Logger
}

// NewSecretProvider creates a provider. A nil consumer source skips the keys table.
func NewSecretProvider(consumer connection.ConsumerSecretSource, options connection.OptionStore, logger *zap.Logger) *SecretProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecretProvider{consumer: consumer, options: options, logger: logger}
}

// Secret returns the current plugin secret
func (p *SecretProvider) Secret(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.consumer != nil {
		secret, ok, err := p.consumer.LatestReadWriteSecret(ctx)
		if err != nil {
			// The keys table is optional, fall through to the stored secret
			p.logger.Warn("Failed to read consumer secret", zap.Error(err))
		} else if ok {
			return secret, nil
		}
	}

	stored, ok, err := p.options.Get(ctx, connection.OptionPluginSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", connection.ErrSecretUnavailable, err)
	}
	if ok && stored != "" {
		return stored, nil
	}

	secret, err := generateSecret(GeneratedSecretLength)
	if err != nil {
		return "", fmt.Errorf("%w: %v", connection.ErrSecretUnavailable, err)
	}
	if err := p.options.Set(ctx, connection.OptionPluginSecret, secret); err != nil {
		return "", fmt.Errorf("%w: %v", connection.ErrSecretUnavailable, err)
	}
	p.logger.Info("Generated plugin secret")
	return secret, nil
}

func generateSecret(n int) (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = secretAlphabet[idx.Int64()]
	}
	return string(out), nil
}
