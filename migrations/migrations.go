// Package migrations embeds SQL migration files for goose.
//
// Files are named NNNNN_description.sql and applied in order on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
