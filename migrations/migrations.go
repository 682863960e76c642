// Package migrations embeds the SQL schema migrations so every binary can
// apply them without a checkout of this directory.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
