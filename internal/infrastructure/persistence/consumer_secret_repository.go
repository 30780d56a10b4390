package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/persistence/models"
)

// GormConsumerSecretSource reads REST API consumer secrets from the store's
// WooCommerce keys table
type GormConsumerSecretSource struct {
	db    *gorm.DB
	table string
}

var _ connection.ConsumerSecretSource = (*GormConsumerSecretSource)(nil)

// NewGormConsumerSecretSource creates a source for the keys table under tablePrefix
func NewGormConsumerSecretSource(db *gorm.DB, tablePrefix string) *GormConsumerSecretSource {
	return &GormConsumerSecretSource{db: db, table: models.WooCommerceAPIKeysTable(tablePrefix)}
}

// LatestReadWriteSecret returns the consumer secret of the newest read_write key.
// A missing table reports no secret.
func (s *GormConsumerSecretSource) LatestReadWriteSecret(ctx context.Context) (string, bool, error) {
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(s.table) {
		return "", false, nil
	}

	var key models.WooCommerceAPIKeyModel
	err := db.Table(s.table).
		Select("key_id", "consumer_secret").
		Where("permissions = ?", models.PermissionReadWrite).
		Order("key_id DESC").
		Take(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read consumer secret: %w", err)
	}
	if key.ConsumerSecret == "" {
		return "", false, nil
	}
	return key.ConsumerSecret, true, nil
}
