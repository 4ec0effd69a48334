package repository

import (
	"context"
	"loginsight-webhook/internal/model"
)

// AuditRepository writes Log Insight audit rows into the named table.
type AuditRepository interface {
	Insert(ctx context.Context, table string, record model.AuditRecord) error
}
