package notifier

import (
	"context"
	"time"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/model"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"
)

// RetryingNotifier retries transient send failures with exponential backoff.
// When maxElapsed is set it also bounds the whole send, in-flight attempts included.
type RetryingNotifier struct {
	next            ChatNotifier
	maxRetries      uint64
	maxElapsed      time.Duration
	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewRetryingNotifier(next ChatNotifier, cfg config.NotifierConfig) *RetryingNotifier {
	r := &RetryingNotifier{
		next:            next,
		maxElapsed:      cfg.MaxElapsed,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
	}
	if cfg.MaxRetries > 0 {
		r.maxRetries = uint64(cfg.MaxRetries)
	}
	if r.initialInterval <= 0 {
		r.initialInterval = 500 * time.Millisecond
	}
	if r.maxInterval < r.initialInterval {
		r.maxInterval = r.initialInterval
	}
	return r
}

func (r *RetryingNotifier) Send(ctx context.Context, message string, chatID string) (*model.ChatDelivery, error) {
	if r.maxElapsed > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.maxElapsed)
		defer cancel()
	}

	var delivery *model.ChatDelivery
	attempt := 0

	operation := func() error {
		attempt++
		d, err := r.next.Send(ctx, message, chatID)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			log.Warn().Err(err).Int("attempt", attempt).Str("chat_id", chatID).Msg("Chat send failed, retrying")
			return err
		}
		delivery = d
		return nil
	}

	sendBackoff := backoff.NewExponentialBackOff()
	sendBackoff.InitialInterval = r.initialInterval
	sendBackoff.MaxInterval = r.maxInterval
	sendBackoff.MaxElapsedTime = r.maxElapsed

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(sendBackoff, r.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	if attempt > 1 {
		log.Info().Int("attempts", attempt).Str("chat_id", chatID).Msg("Chat send succeeded after retry")
	}
	return delivery, nil
}
