package models

// WooCommerceAPIKeyModel maps the columns the connector reads from
// <prefix>woocommerce_api_keys. The table name depends on the site prefix,
// so queries name it explicitly with WooCommerceAPIKeysTable.
type WooCommerceAPIKeyModel struct {
	KeyID          int64  `gorm:"column:key_id;primaryKey"`
	Permissions    string `gorm:"column:permissions"`
	ConsumerSecret string `gorm:"column:consumer_secret"`
}

// PermissionReadWrite is the permissions value of read/write REST keys
const PermissionReadWrite = "read_write"

// WooCommerceAPIKeysTable returns the REST API keys table for a table prefix
func WooCommerceAPIKeysTable(prefix string) string {
	return prefix + "woocommerce_api_keys"
}
