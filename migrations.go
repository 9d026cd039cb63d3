// Package marketplace embeds the database migrations applied by the migrate command.
package marketplace

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
