// Package migrations embeds the goose SQL migrations.
//
// Files follow YYYYMMDDHHMMSS_description.sql and are applied in order at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
