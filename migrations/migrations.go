// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the numbered .sql files, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
