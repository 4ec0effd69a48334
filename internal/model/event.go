package model

const (
	DefaultHostname       = "Log Insight"
	DefaultRecommendation = "No recommended actions"
	// NullRecommendation is what Log Insight sends when an alert has no recommendation.
	NullRecommendation = "null"
)

// NormalizedEvent is the fixed set of fields extracted from a RawEvent.
type NormalizedEvent struct {
	Source         string `json:"source"`
	Alert          string `json:"alert"`
	Time           string `json:"time"`
	Hostname       string `json:"hostname"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	URL            string `json:"url"`
}

// ChatDelivery is what the chat notifier returns for a sent message.
type ChatDelivery struct {
	ID string `json:"id"`
}

// DispatchedEvent is published downstream once an event has been handled.
type DispatchedEvent struct {
	Event         NormalizedEvent `json:"event"`
	ChatMessageID string          `json:"chat_message_id,omitempty"`
	Audited       bool            `json:"audited"`
}
