package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator runs schema migrations and connectivity probes against Postgres.
// It is the delegation adapter used by the precondition gate: the gate owns
// the sequencing, the external migration tool owns the schema changes.
type Migrator struct {
	db            *sql.DB
	migrationsDir string
	databaseURL   string
	probeTimeout  time.Duration
}

// NewMigrator wires a Migrator over an open connection and a migrations directory
func NewMigrator(db *sql.DB, migrationsDir, databaseURL string) *Migrator {
	return &Migrator{
		db:            db,
		migrationsDir: migrationsDir,
		databaseURL:   databaseURL,
		probeTimeout:  10 * time.Second,
	}
}

// CheckConnectivity issues a trivial query against the target database
func (m *Migrator) CheckConnectivity(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	var one int
	if err := m.db.QueryRowContext(probeCtx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database connectivity probe: %w", err)
	}

	return nil
}

// ApplyMigrations brings the schema to the latest revision. An already
// up-to-date schema is not an error.
func (m *Migrator) ApplyMigrations(_ context.Context) error {
	mig, err := migrate.New("file://"+m.migrationsDir, m.databaseURL)
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// MigrateDown rolls the schema all the way back. Used by tooling only.
func (m *Migrator) MigrateDown() error {
	mig, err := migrate.New("file://"+m.migrationsDir, m.databaseURL)
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}
	defer mig.Close()

	if err := mig.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("reverting migrations: %w", err)
	}

	return nil
}
