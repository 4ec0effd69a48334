package database

import (
	"context"
	"fmt"
	"time"

	"loginsight-webhook/config"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DSN builds the go-sql-driver DSN for the audit database.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// Open connects to MySQL without lifecycle hooks; used by the migrate tool.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger:                 NewGormLogger(),
		SkipDefaultTransaction: true,
	})
}

func NewDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	operation := func() error {
		var err error
		db, err = Open(cfg.Database)
		if err != nil {
			log.Warn().Err(err).Str("class", string(Classify(err))).Msg("Attempt failed: Error connecting to the audit database")
			return err
		}
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 2 * time.Second
	connectBackoff.MaxInterval = 15 * time.Second
	connectBackoff.MaxElapsedTime = 60 * time.Second

	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("Connecting to the audit database with retries...")
	if err := backoff.Retry(operation, connectBackoff); err != nil {
		class := Classify(err)
		log.Error().Err(err).Str("class", string(class)).Msg(Hint(class))
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing audit database connection...")
			return sqlDB.Close()
		},
	})
	log.Info().Msg("Audit database connection established.")
	return db, nil
}
