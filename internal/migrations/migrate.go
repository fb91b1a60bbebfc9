package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Up runs all pending SQL migrations found in migrationsDir. driver is the
// database/sql driver name the connection was opened with.
func Up(db *sql.DB, driver, migrationsDir string) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case "", "sqlite":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	}
	return "", fmt.Errorf("no migration dialect for driver %q", driver)
}
