package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// sourceURL accepts either a bare directory or a file:// URL.
func sourceURL(migrationsDir string) string {
	if strings.Contains(migrationsDir, "://") {
		return migrationsDir
	}
	return "file://" + migrationsDir
}

// migrateWith opens a migrator, applies step and always closes it.
func migrateWith(dsn, migrationsDir string, step func(*migrate.Migrate) error) (err error) {
	m, err := migrate.New(sourceURL(migrationsDir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()
	return step(m)
}

// RunMigrations applies every pending migration and returns the schema
// version reached. Having nothing to apply is not an error.
func RunMigrations(dsn string, migrationsDir string) (uint, error) {
	var version uint
	err := migrateWith(dsn, migrationsDir, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: run migrations up: %w", err)
		}
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("postgres: read schema version: %w", err)
		}
		if dirty {
			return fmt.Errorf("postgres: schema version %d is dirty", v)
		}
		version = v
		return nil
	})
	return version, err
}

// RunMigrationsDown rolls back every applied migration.
func RunMigrationsDown(dsn string, migrationsDir string) error {
	return migrateWith(dsn, migrationsDir, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: run migrations down: %w", err)
		}
		return nil
	})
}
