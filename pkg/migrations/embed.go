// Package migrations embeds the schema of the SQLite record archive.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
