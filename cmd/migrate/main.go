// Command migrate creates the Log Insight audit table for the configured
// AUDIT_DRIVER and SQL_TABLE. Safe to run repeatedly.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/database"
	"loginsight-webhook/internal/timescaledb"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.Audit.Driver {
	case "", "mysql":
		err = migrateMySQL(ctx, cfg)
	case "postgres":
		err = migratePostgres(ctx, cfg)
	default:
		log.Fatal().Str("driver", cfg.Audit.Driver).Msg("Unsupported AUDIT_DRIVER (want mysql or postgres)")
	}

	if err != nil {
		class := database.Classify(err)
		log.Fatal().Err(err).Str("class", string(class)).Msg(database.Hint(class))
	}
	log.Info().Str("driver", cfg.Audit.Driver).Str("table", cfg.Audit.Table).Msg("Audit table is ready")
}

func migrateMySQL(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.EnsureAuditTable(ctx, db, cfg.Audit.Table)
}

func migratePostgres(ctx context.Context, cfg *config.Config) error {
	pool, err := timescaledb.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	return timescaledb.EnsureAuditTable(ctx, pool, cfg.Audit.Table)
}
