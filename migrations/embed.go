// Package migrations embeds SQL migration files into the binary so the
// server can migrate its schema without the files being present on disk.
package migrations

import (
	"embed"

	"github.com/dmavtt/tabletop-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
