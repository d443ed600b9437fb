// Package appfs embeds the static files shipped with the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql all:templates
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)
