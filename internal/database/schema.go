package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidateTableName rejects anything that is not a plain SQL identifier.
func ValidateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid audit table name %q", table)
	}
	return nil
}

type auditColumn struct {
	name     string
	mysql    string
	postgres string
}

// Column order matches the request path insert; id is server generated.
var auditColumns = []auditColumn{
	{"id", "INT AUTO_INCREMENT PRIMARY KEY NOT NULL", "SERIAL PRIMARY KEY"},
	{"device", "TEXT NULL", "TEXT NULL"},
	{"event", "TEXT NOT NULL", "TEXT NOT NULL"},
	{"description", "TEXT NULL", "TEXT NULL"},
	{"logdate", "DATE NOT NULL", "DATE NOT NULL"},
	{"logtime", "TIME NOT NULL", "TIME NOT NULL"},
	{"source", "BINARY(4) NOT NULL", "BYTEA NOT NULL"},
	{"message", "TEXT NULL", "TEXT NULL"},
}

// AuditTableDDL returns the CREATE TABLE statement for the audit table.
func AuditTableDDL(dialect Dialect, table string) (string, error) {
	if err := ValidateTableName(table); err != nil {
		return "", err
	}

	quote := func(s string) string { return "`" + s + "`" }
	if dialect == DialectPostgres {
		quote = func(s string) string { return `"` + s + `"` }
	} else if dialect != DialectMySQL {
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}

	defs := make([]string, 0, len(auditColumns))
	for _, col := range auditColumns {
		colType := col.mysql
		if dialect == DialectPostgres {
			colType = col.postgres
		}
		defs = append(defs, quote(col.name)+" "+colType)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table), strings.Join(defs, ", ")), nil
}

// EnsureAuditTable provisions the audit table on MySQL. It is run by the
// migrate tool, never on the request path.
func EnsureAuditTable(ctx context.Context, db *gorm.DB, table string) error {
	ddl, err := AuditTableDDL(DialectMySQL, table)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(ddl).Error; err != nil {
		class := Classify(err)
		log.Error().Err(err).Str("class", string(class)).Str("table", table).Msg(Hint(class))
		return fmt.Errorf("failed to create audit table %s: %w", table, err)
	}
	log.Info().Str("table", table).Msg("Ensured audit table exists.")
	return nil
}
