// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared timestamp columns
//   - option.go: store options (connection state, display settings)
//   - order_meta.go: per-order tracking metadata rows
//   - woocommerce.go: read-only view of the store's REST API keys table
package models
