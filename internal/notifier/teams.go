package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/model"

	"github.com/rs/zerolog/log"
)

type teamsMessageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type teamsMessage struct {
	Body teamsMessageBody `json:"body"`
}

type teamsMessageResponse struct {
	ID string `json:"id"`
}

// TeamsNotifier posts HTML chat messages through the Microsoft Graph API.
type TeamsNotifier struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewTeamsNotifier(cfg config.GraphConfig) (*TeamsNotifier, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("graph base URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TeamsNotifier{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

func (n *TeamsNotifier) Send(ctx context.Context, message string, chatID string) (*model.ChatDelivery, error) {
	if chatID == "" {
		return nil, ErrMissingChatID
	}

	bodyBytes, err := json.Marshal(teamsMessage{
		Body: teamsMessageBody{ContentType: "html", Content: message},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chats/%s/messages", n.baseURL, url.PathEscape(chatID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.accessToken)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("Chat HTTP request failed")
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status_code", resp.StatusCode).Str("chat_id", chatID).Msg("Chat API returned non-OK status")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var created teamsMessageResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: response has no message id", ErrMalformedResponse)
	}

	log.Debug().Str("chat_id", chatID).Str("message_id", created.ID).Msg("Chat message sent")
	return &model.ChatDelivery{ID: created.ID}, nil
}
