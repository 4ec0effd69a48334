package database

import (
	"context"
	"fmt"

	"loginsight-webhook/internal/model"
	"loginsight-webhook/internal/repository"
	"loginsight-webhook/internal/util"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type auditRow struct {
	Device      string  `gorm:"column:device"`
	Event       string  `gorm:"column:event"`
	Description string  `gorm:"column:description"`
	LogDate     string  `gorm:"column:logdate"`
	LogTime     string  `gorm:"column:logtime"`
	Source      []byte  `gorm:"column:source"`
	Message     *string `gorm:"column:message"`
}

type gormAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &gormAuditRepository{db: db}
}

func (r *gormAuditRepository) Insert(ctx context.Context, table string, record model.AuditRecord) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	row := auditRow{
		Device:      record.Device,
		Event:       record.Event,
		Description: record.Description,
		LogDate:     record.LogDate,
		LogTime:     record.LogTime,
		Source:      util.Uint32ToBytes(record.Source),
		Message:     record.Message,
	}

	if err := r.db.WithContext(ctx).Table(table).Create(&row).Error; err != nil {
		log.Error().Err(err).Str("class", string(Classify(err))).Str("table", table).Msg("Failed to insert audit record")
		return fmt.Errorf("failed to insert audit record into %s: %w", table, err)
	}
	log.Debug().Str("table", table).Str("device", record.Device).Msg("Inserted audit record")
	return nil
}
