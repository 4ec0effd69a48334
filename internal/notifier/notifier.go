// Package notifier delivers rendered alerts to a chat and reports the id of
// the created message.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"loginsight-webhook/internal/model"
)

// ChatNotifier sends one message to the chat identified by chatID.
type ChatNotifier interface {
	Send(ctx context.Context, message string, chatID string) (*model.ChatDelivery, error)
}

var (
	ErrMissingChatID     = errors.New("chat id is required")
	ErrMalformedResponse = errors.New("malformed chat response")
)

// StatusError is returned when the chat API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat API returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsRetryable classifies a send error. Transport errors are retried, client
// errors and cancellations are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMissingChatID) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}
