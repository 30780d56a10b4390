package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shipkia/connector/internal/domain/connection"
	"github.com/shipkia/connector/internal/infrastructure/persistence/models"
)

// GormOptionStore implements connection.OptionStore on the options table
type GormOptionStore struct {
	db *gorm.DB
}

var _ connection.OptionStore = (*GormOptionStore)(nil)

// NewGormOptionStore creates a new GormOptionStore
func NewGormOptionStore(db *gorm.DB) *GormOptionStore {
	return &GormOptionStore{db: db}
}

// Get returns the value of key and whether it is set
func (s *GormOptionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.OptionModel
	err := s.db.WithContext(ctx).Where("option_name = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read option %s: %w", key, err)
	}
	return row.Value, true, nil
}

// GetMany returns the values of the set keys
func (s *GormOptionStore) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	var rows []models.OptionModel
	if err := s.db.WithContext(ctx).Where("option_name IN ?", keys).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}
	for _, r := range rows {
		values[r.Name] = r.Value
	}
	return values, nil
}

// Set creates or replaces key
func (s *GormOptionStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany upserts every key in one transaction
func (s *GormOptionStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.OptionModel, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.OptionModel{
			Name:           k,
			Value:          v,
			TimestampModel: models.TimestampModel{CreatedAt: now, UpdatedAt: now},
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "option_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}
	return nil
}

// Delete removes keys
func (s *GormOptionStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Where("option_name IN ?", keys).Delete(&models.OptionModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	return nil
}
