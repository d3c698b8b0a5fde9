// The migrate binary is the deployment precondition gate. It validates the
// deploy tree, probes the database and applies schema migrations; container
// startup scripts run it before the server and abort the rollout when it
// exits non-zero.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/jimmitjoo/cinema/config"
	"github.com/jimmitjoo/cinema/database"
	"github.com/jimmitjoo/cinema/gate"
)

const (
	defaultConfigFile    = "/usr/src/app/.env"
	defaultScriptsDir    = "/usr/src/app/scripts"
	defaultMigrationsDir = "/usr/src/app/migrations"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configFile := envOr("CINEMA_CONFIG", defaultConfigFile)
	scriptsDir := envOr("CINEMA_SCRIPTS", defaultScriptsDir)
	migrationsDir := envOr("CINEMA_MIGRATIONS", defaultMigrationsDir)

	g := gate.New(configFile, scriptsDir, migrationsDir, os.Stdout)

	// The filesystem checks run before anything touches the database, so a
	// broken deploy tree fails without a connection attempt.
	if err := g.CheckPrerequisites(); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		color.Red("ERROR: %v", err)
		os.Exit(1)
	}

	db, err := database.Open(ctx, cfg.DB.DSN())
	if err != nil {
		color.Red("ERROR: database is not reachable: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	migrator := database.NewMigrator(db, migrationsDir, cfg.DB.URL())
	if err := g.Run(ctx, migrator); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
