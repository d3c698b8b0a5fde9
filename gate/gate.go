// Package gate implements the deployment precondition gate: a fail-fast
// sequence of filesystem checks followed by a database connectivity probe and
// a delegated schema migration. The gate never retries and never interprets
// failures from the delegated tool; every step is a hard prerequisite for the
// next one.
package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Database is the delegation boundary of the gate. Implementations adapt
// whatever client and migration tooling the deployment uses.
type Database interface {
	CheckConnectivity(ctx context.Context) error
	ApplyMigrations(ctx context.Context) error
}

// Prerequisite failures, one per distinct missing piece of the deploy tree.
var (
	ErrConfigMissing      = errors.New("config file missing")
	ErrEnvScriptMissing   = errors.New("environment script missing")
	ErrVersionsDirMissing = errors.New("migrations directory missing")
	ErrNoMigrations       = errors.New("no migration files found")
)

const envScriptName = "setenv.sh"

// Gate validates the deployment tree and then applies schema migrations.
type Gate struct {
	ConfigFile    string
	ScriptsDir    string
	MigrationsDir string
	Out           io.Writer
}

// New builds a gate over the given paths, writing diagnostics to out.
func New(configFile, scriptsDir, migrationsDir string, out io.Writer) *Gate {
	if out == nil {
		out = os.Stdout
	}
	return &Gate{
		ConfigFile:    configFile,
		ScriptsDir:    scriptsDir,
		MigrationsDir: migrationsDir,
		Out:           out,
	}
}

// Run performs the four prerequisite checks in order, probes connectivity and
// delegates the migration run. The first failure stops everything; nothing
// downstream is attempted after a failed check.
func (g *Gate) Run(ctx context.Context, db Database) error {
	if err := g.CheckPrerequisites(); err != nil {
		return err
	}

	if err := db.CheckConnectivity(ctx); err != nil {
		fmt.Fprintf(g.Out, "ERROR: database is not reachable: %v\n", err)
		return err
	}
	fmt.Fprintln(g.Out, "Database reachable.")

	if err := db.ApplyMigrations(ctx); err != nil {
		fmt.Fprintf(g.Out, "ERROR: migration run failed: %v\n", err)
		return err
	}
	fmt.Fprintln(g.Out, "Migrations applied.")

	return nil
}

// CheckPrerequisites validates the deploy tree without touching the database.
func (g *Gate) CheckPrerequisites() error {
	if !fileExists(g.ConfigFile) {
		fmt.Fprintf(g.Out, "ERROR: %s not found at: %s\n", filepath.Base(g.ConfigFile), g.ConfigFile)
		return fmt.Errorf("%w: %s", ErrConfigMissing, g.ConfigFile)
	}

	envScript := filepath.Join(g.ScriptsDir, envScriptName)
	if !fileExists(envScript) {
		fmt.Fprintf(g.Out, "ERROR: %s not found at: %s\n", envScriptName, envScript)
		return fmt.Errorf("%w: %s", ErrEnvScriptMissing, envScript)
	}

	info, err := os.Stat(g.MigrationsDir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(g.Out, "ERROR: migrations directory not found at: %s\n", g.MigrationsDir)
		return fmt.Errorf("%w: %s", ErrVersionsDirMissing, g.MigrationsDir)
	}

	if countMigrationFiles(g.MigrationsDir) == 0 {
		fmt.Fprintln(g.Out, "ERROR: No migration files found")
		return fmt.Errorf("%w: %s", ErrNoMigrations, g.MigrationsDir)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func countMigrationFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".sql") {
			count++
		}
	}
	return count
}
