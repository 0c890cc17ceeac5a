// Package migrations embeds the postgres schema migrations so the server and
// the migrate CLI can run them without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
