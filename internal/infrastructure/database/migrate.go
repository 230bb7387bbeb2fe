package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator builds a migrator on an open connection.
func NewMigrator(db *DB) (*Migrator, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migration files: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. changed is false when the schema was
// already current.
func (mg *Migrator) Up() (changed bool, err error) {
	return mg.apply(mg.m.Up())
}

// Down reverts every migration.
func (mg *Migrator) Down() (changed bool, err error) {
	return mg.apply(mg.m.Down())
}

// Steps applies n migrations up (n > 0) or down (n < 0).
func (mg *Migrator) Steps(n int) (changed bool, err error) {
	return mg.apply(mg.m.Steps(n))
}

func (mg *Migrator) apply(err error) (bool, error) {
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}
	return true, nil
}

// Version reports the current schema version.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the migration source and the database handle the
// migrator was built on.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}
