// Package migrations holds the PostgreSQL schema migrations of the connector.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql migration file
//
//go:embed *.sql
var FS embed.FS
