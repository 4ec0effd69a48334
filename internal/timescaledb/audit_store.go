package timescaledb

import (
	"context"
	"fmt"
	"time"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/database"
	"loginsight-webhook/internal/model"
	"loginsight-webhook/internal/repository"
	"loginsight-webhook/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// execer is the slice of pgxpool.Pool the audit store needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type pgAuditStore struct {
	db execer
}

func NewAuditStore(db execer) repository.AuditRepository {
	return &pgAuditStore{db: db}
}

// NewPool opens and pings a pgx pool for the audit database.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse Postgres DSN")
		return nil, fmt.Errorf("invalid Postgres DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create connection pool to Postgres")
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		class := database.Classify(err)
		log.Error().Err(err).Str("class", string(class)).Msg(database.Hint(class))
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}
	log.Info().Msg("Postgres connection pool created and verified.")
	return pool, nil
}

func ProvideAuditStore(lc fx.Lifecycle, cfg *config.Config) (repository.AuditRepository, error) {
	pool, err := NewPool(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Postgres connection pool...")
			pool.Close()
			return nil
		},
	})

	return NewAuditStore(pool), nil
}

func (s *pgAuditStore) Insert(ctx context.Context, table string, record model.AuditRecord) error {
	if err := database.ValidateTableName(table); err != nil {
		return err
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (device, event, description, logdate, logtime, source, message) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		pgx.Identifier{table}.Sanitize(),
	)

	tag, err := s.db.Exec(ctx, insertSQL,
		record.Device,
		record.Event,
		record.Description,
		record.LogDate,
		record.LogTime,
		util.Uint32ToBytes(record.Source),
		record.Message,
	)
	if err != nil {
		log.Error().Err(err).Str("class", string(database.Classify(err))).Str("table", table).Msg("Failed to insert audit record into Postgres")
		return fmt.Errorf("postgres audit insert failed: %w", err)
	}

	if tag.RowsAffected() != 1 {
		log.Warn().Int64("inserted", tag.RowsAffected()).Str("table", table).Msg("Postgres audit insert row count mismatch")
	} else {
		log.Debug().Str("table", table).Str("device", record.Device).Msg("Inserted audit record into Postgres")
	}
	return nil
}

// EnsureAuditTable provisions the audit table on Postgres (migrate tool only).
func EnsureAuditTable(ctx context.Context, db execer, table string) error {
	ddl, err := database.AuditTableDDL(database.DialectPostgres, table)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, ddl); err != nil {
		class := database.Classify(err)
		log.Error().Err(err).Str("class", string(class)).Str("table", table).Msg(database.Hint(class))
		return fmt.Errorf("failed to create audit table %s: %w", table, err)
	}
	log.Info().Str("table", table).Msg("Ensured audit table exists.")
	return nil
}
