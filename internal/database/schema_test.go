package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditTableDDL(t *testing.T) {
	mysqlDDL, err := AuditTableDDL(DialectMySQL, "loginsight_events")
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS `loginsight_events` (`id` INT AUTO_INCREMENT PRIMARY KEY NOT NULL, "+
			"`device` TEXT NULL, `event` TEXT NOT NULL, `description` TEXT NULL, `logdate` DATE NOT NULL, "+
			"`logtime` TIME NOT NULL, `source` BINARY(4) NOT NULL, `message` TEXT NULL)",
		mysqlDDL)

	pgDDL, err := AuditTableDDL(DialectPostgres, "loginsight_events")
	require.NoError(t, err)
	assert.Contains(t, pgDDL, `CREATE TABLE IF NOT EXISTS "loginsight_events"`)
	assert.Contains(t, pgDDL, `"source" BYTEA NOT NULL`)
	assert.Contains(t, pgDDL, `"id" SERIAL PRIMARY KEY`)

	_, err = AuditTableDDL("sqlite", "loginsight_events")
	assert.Error(t, err)
}

func TestValidateTableName(t *testing.T) {
	valid := []string{"loginsight_events", "_audit", "Events2022"}
	for _, name := range valid {
		assert.NoError(t, ValidateTableName(name), name)
	}

	invalid := []string{"", "1events", "log insight", "events;drop", "dbo.events", `events"`}
	for _, name := range invalid {
		assert.Error(t, ValidateTableName(name), name)
	}
}
