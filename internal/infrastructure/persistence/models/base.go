package models

import "time"

// TimestampModel provides the timestamp columns shared by the connector tables
type TimestampModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All returns the models owned by the connector, in creation order.
// The WooCommerce keys table belongs to the store and is never migrated.
func All() []any {
	return []any{
		&OptionModel{},
		&OrderMetaModel{},
	}
}
