package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"loginsight-webhook/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Webhook: config.WebhookConfig{
			Username:         "li-user",
			Password:         "li-secret",
			AuthHeader:       "X-LI-Username",
			AuthHeaderSecret: "X-LI-Password",
			ChatID:           "19:chat@thread.v2",
		},
		Audit: config.AuditConfig{
			Driver:              "mysql",
			Table:               "loginsight_events",
			AuditOnNotifyFailed: true,
		},
	}
}

// captureLogs redirects the global logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

type logLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []logLine {
	t.Helper()
	var lines []logLine
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line logLine
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	return lines
}

func TestAuthenticator_Authenticate(t *testing.T) {
	auth := NewAuthenticator(testConfig())

	tests := []struct {
		name     string
		username string
		password string
		setUser  bool
		want     bool
		wantLog  *logLine
	}{
		{name: "matching credentials", username: "li-user", password: "li-secret", setUser: true, want: true},
		{name: "wrong password", username: "li-user", password: "nope", setUser: true, want: false,
			wantLog: &logLine{Level: "warn", Message: "Log Insight: webhook credentials rejected"}},
		{name: "wrong username", username: "someone", password: "li-secret", setUser: true, want: false,
			wantLog: &logLine{Level: "warn", Message: "Log Insight: webhook credentials rejected"}},
		{name: "username without password", username: "li-user", setUser: true, want: false,
			wantLog: &logLine{Level: "warn", Message: "Log Insight: webhook credentials rejected"}},
		{name: "empty username header is checked", username: "", password: "nope", setUser: true, want: false,
			wantLog: &logLine{Level: "warn", Message: "Log Insight: webhook credentials rejected"}},
		{name: "undefined marker fails open", username: "undefined", setUser: true, want: true,
			wantLog: &logLine{Level: "warn", Message: "Log Insight: Unauthenticated webhook"}},
		{name: "missing header fails open", want: true,
			wantLog: &logLine{Level: "warn", Message: "Log Insight: Unauthenticated webhook"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			headers := http.Header{}
			if tt.setUser {
				headers.Set("X-LI-Username", tt.username)
			}
			if tt.password != "" {
				headers.Set("X-LI-Password", tt.password)
			}

			assert.Equal(t, tt.want, auth.Authenticate(headers))

			lines := decodeLogLines(t, buf)
			if tt.wantLog == nil {
				assert.Empty(t, lines)
				return
			}
			require.Len(t, lines, 1)
			assert.Equal(t, *tt.wantLog, lines[0])
		})
	}
}
