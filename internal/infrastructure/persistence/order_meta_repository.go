package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shipkia/connector/internal/domain/tracking"
	"github.com/shipkia/connector/internal/infrastructure/persistence/models"
)

// GormOrderMetaRepository implements tracking.Repository on the order_meta table
type GormOrderMetaRepository struct {
	db *gorm.DB
}

var _ tracking.Repository = (*GormOrderMetaRepository)(nil)

// NewGormOrderMetaRepository creates a new GormOrderMetaRepository
func NewGormOrderMetaRepository(db *gorm.DB) *GormOrderMetaRepository {
	return &GormOrderMetaRepository{db: db}
}

// Get returns the tracking of orderID
func (r *GormOrderMetaRepository) Get(ctx context.Context, orderID int64) (tracking.OrderTracking, error) {
	if orderID <= 0 {
		return tracking.OrderTracking{}, tracking.ErrInvalidOrderID
	}

	var rows []models.OrderMetaModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND meta_key IN ?", orderID, tracking.MetaKeys()).
		Find(&rows).Error
	if err != nil {
		return tracking.OrderTracking{}, fmt.Errorf("failed to read tracking of order %d: %w", orderID, err)
	}
	return models.OrderTrackingFromRows(orderID, rows), nil
}

// Save upserts the given meta values of orderID
func (r *GormOrderMetaRepository) Save(ctx context.Context, orderID int64, values map[string]string) error {
	if orderID <= 0 {
		return tracking.ErrInvalidOrderID
	}
	if len(values) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.OrderMetaModel, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.OrderMetaModel{
			OrderID:        orderID,
			MetaKey:        k,
			MetaValue:      v,
			TimestampModel: models.TimestampModel{CreatedAt: now, UpdatedAt: now},
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save tracking of order %d: %w", orderID, err)
	}
	return nil
}

// List returns a page of orders with at least one non-empty tracking value,
// highest order id first
func (r *GormOrderMetaRepository) List(ctx context.Context, filter tracking.ListFilter) ([]tracking.OrderTracking, int64, error) {
	filter = filter.Normalize()
	tracked := r.db.WithContext(ctx).
		Model(&models.OrderMetaModel{}).
		Where("meta_key IN ? AND meta_value <> ''", tracking.MetaKeys())

	var total int64
	if err := tracked.Session(&gorm.Session{}).Distinct("order_id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tracked orders: %w", err)
	}
	if total == 0 {
		return []tracking.OrderTracking{}, 0, nil
	}

	var orderIDs []int64
	err := tracked.Session(&gorm.Session{}).
		Distinct("order_id").
		Order("order_id DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Pluck("order_id", &orderIDs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tracked orders: %w", err)
	}
	if len(orderIDs) == 0 {
		return []tracking.OrderTracking{}, total, nil
	}

	var rows []models.OrderMetaModel
	err = r.db.WithContext(ctx).
		Where("order_id IN ? AND meta_key IN ?", orderIDs, tracking.MetaKeys()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read tracked orders: %w", err)
	}

	byOrder := make(map[int64][]models.OrderMetaModel, len(orderIDs))
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row)
	}
	result := make([]tracking.OrderTracking, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, models.OrderTrackingFromRows(id, byOrder[id]))
	}
	return result, total, nil
}
