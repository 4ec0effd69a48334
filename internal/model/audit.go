package model

const (
	// AuditHostnameFallback differs from DefaultHostname on purpose; existing
	// reports filter audit rows on this value.
	AuditHostnameFallback = "No hostname"

	AuditDateLayout = "2006-01-02"
	AuditTimeLayout = "15:04:05"
)

// AuditRecord is one row of the Log Insight audit table.
type AuditRecord struct {
	Device      string
	Event       string
	Description string
	LogDate     string
	LogTime     string
	Source      uint32
	// Message is nil when the chat send failed.
	Message *string
}
