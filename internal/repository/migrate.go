package repository

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// Migrate applies all pending migrations for the given dialect.
func Migrate(db *sql.DB, d Dialect) error {
	dir, gooseDialect, err := migrationSource(d)
	if err != nil {
		return err
	}

	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", d, err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(sub)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func migrationSource(d Dialect) (dir, gooseDialect string, err error) {
	switch d {
	case DialectSQLite:
		return "migrations/sqlite", "sqlite3", nil
	case DialectPostgres:
		return "migrations/postgres", "postgres", nil
	default:
		return "", "", fmt.Errorf("unsupported dialect %q", d)
	}
}
