// Package migrate runs versioned SQL migrations with goose. Gorm's
// AutoMigrate covers dev setups; production databases use these files.
package migrate

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Run applies migrations for the given driver and dsn.
// command is one of up, down, status.
func Run(driver, dsn, command string) error {
	var dialect, sqlDriver, dir string
	switch driver {
	case "sqlite":
		dialect, sqlDriver, dir = "sqlite3", "sqlite", "migrations/sqlite"
	case "postgres", "postgrespool":
		dialect, sqlDriver, dir = "postgres", "pgx", "migrations/postgres"
	case "memory":
		return fmt.Errorf("memory storage has no migrations")
	default:
		return fmt.Errorf("unknown storage driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return err
	}
	goose.SetBaseFS(sub)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.Up(db, ".")
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}
