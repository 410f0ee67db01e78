// Package migrations embeds the schema migrations applied by storage.Open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
