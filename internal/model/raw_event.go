package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionalString records whether a key was sent at all, whether it was JSON
// null, and its value. Numbers and booleans are kept as their JSON text.
type OptionalString struct {
	Value   string
	Present bool
	Null    bool
}

func (s *OptionalString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	s.Present = true
	s.Null = false
	s.Value = ""

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		s.Null = true
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		return json.Unmarshal(trimmed, &s.Value)
	default:
		s.Value = string(trimmed)
		return nil
	}
}

func (s OptionalString) MarshalJSON() ([]byte, error) {
	if !s.Present || s.Null {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Str returns the value and whether it is usable (sent and not null).
func (s OptionalString) Str() (string, bool) {
	if !s.Present || s.Null {
		return "", false
	}
	return s.Value, true
}

func NewOptionalString(v string) OptionalString {
	return OptionalString{Value: v, Present: true}
}

// RawField is one entry of messages[].fields.
type RawField struct {
	Content OptionalString `json:"content"`
}

// RawMessage is one entry of the webhook "messages" array.
type RawMessage struct {
	Text   OptionalString `json:"text"`
	Fields FieldList      `json:"fields"`
}

// MessageList tolerates a missing, null or non-array "messages" value.
type MessageList []RawMessage

func (l *MessageList) UnmarshalJSON(data []byte) error {
	var items []RawMessage
	ok, err := decodeLenientArray(data, &items)
	if err != nil || !ok {
		*l = nil
		return err
	}
	*l = items
	return nil
}

// FieldList tolerates a missing, null or non-array "fields" value.
type FieldList []RawField

func (l *FieldList) UnmarshalJSON(data []byte) error {
	var items []RawField
	ok, err := decodeLenientArray(data, &items)
	if err != nil || !ok {
		*l = nil
		return err
	}
	*l = items
	return nil
}

func decodeLenientArray(data []byte, out interface{}) (bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return false, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, err
	}
	return true, nil
}

// RawEvent is the Log Insight webhook body. Source is not part of the body;
// it is the caller's address, set by the dispatcher.
type RawEvent struct {
	Source         string         `json:"-"`
	AlertName      OptionalString `json:"alert_name"`
	Timestamp      OptionalString `json:"timestamp"`
	Recommendation OptionalString `json:"recommendation"`
	URL            OptionalString `json:"url"`
	Messages       MessageList    `json:"messages"`
}

// MissingFieldError lists required webhook keys that were not sent.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("webhook payload is missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// Validate checks the keys that have no fallback.
func (e *RawEvent) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value OptionalString
	}{
		{"alert_name", e.AlertName},
		{"timestamp", e.Timestamp},
		{"recommendation", e.Recommendation},
		{"url", e.URL},
	}
	for _, field := range required {
		if !field.value.Present {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

// Hostname reads messages[0].fields[0].content.
func (e *RawEvent) Hostname() (string, bool) {
	if len(e.Messages) == 0 || len(e.Messages[0].Fields) == 0 {
		return "", false
	}
	return e.Messages[0].Fields[0].Content.Str()
}

// Description reads messages[0].text.
func (e *RawEvent) Description() (string, bool) {
	if len(e.Messages) == 0 {
		return "", false
	}
	return e.Messages[0].Text.Str()
}
