// Package migrations embeds the goose SQL migrations applied at startup
// and by the migrate command.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
