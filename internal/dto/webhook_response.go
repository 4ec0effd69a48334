package dto

// DispatchResult is the data payload of a successful webhook response.
type DispatchResult struct {
	Hostname      string `json:"hostname"`
	Alert         string `json:"alert"`
	Source        string `json:"source"`
	ChatMessageID string `json:"chatMessageId,omitempty"`
	Audited       bool   `json:"audited"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
