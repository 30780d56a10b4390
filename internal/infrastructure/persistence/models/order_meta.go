package models

import "github.com/shipkia/connector/internal/domain/tracking"

// OrderMetaModel is one tracking meta value of an order
type OrderMetaModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"not null;uniqueIndex:idx_order_meta_order_key;index:idx_order_meta_order_id"`
	MetaKey   string `gorm:"type:varchar(191);not null;uniqueIndex:idx_order_meta_order_key"`
	MetaValue string `gorm:"type:text;not null;default:''"`
	TimestampModel
}

// TableName returns the table name for GORM
func (OrderMetaModel) TableName() string {
	return "order_meta"
}

// OrderTrackingFromRows folds the meta rows of one order into its tracking
func OrderTrackingFromRows(orderID int64, rows []OrderMetaModel) tracking.OrderTracking {
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.OrderID == orderID {
			meta[r.MetaKey] = r.MetaValue
		}
	}
	return tracking.FromMeta(orderID, meta)
}
