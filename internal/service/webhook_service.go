package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/dto"
	"loginsight-webhook/internal/kafka"
	"loginsight-webhook/internal/metrics"
	"loginsight-webhook/internal/model"
	"loginsight-webhook/internal/notifier"
	"loginsight-webhook/internal/parser"
	"loginsight-webhook/internal/repository"
	"loginsight-webhook/internal/util"

	"github.com/rs/zerolog/log"
)

var ErrUnauthenticated = errors.New("webhook authentication failed")

// NotifierError is returned when the chat send failed after all retries.
// Audited reports whether the audit row was still written.
type NotifierError struct {
	Err     error
	Audited bool
}

func (e *NotifierError) Error() string {
	return fmt.Sprintf("chat notification failed: %v", e.Err)
}

func (e *NotifierError) Unwrap() error {
	return e.Err
}

// WebhookService handles one Log Insight webhook end to end.
type WebhookService interface {
	Authenticate(headers http.Header) bool
	HandleEvent(ctx context.Context, raw *model.RawEvent, sourceAddr string) (*dto.DispatchResult, error)
}

type webhookService struct {
	authenticator Authenticator
	normalizer    parser.EventNormalizer
	renderer      MessageRenderer
	notifier      notifier.ChatNotifier
	auditRepo     repository.AuditRepository
	publisher     kafka.EventPublisher
	metrics       *metrics.Collector

	chatID              string
	table               string
	auditOnNotifyFailed bool
	now                 func() time.Time
}

func NewWebhookService(
	cfg *config.Config,
	authenticator Authenticator,
	normalizer parser.EventNormalizer,
	renderer MessageRenderer,
	chatNotifier notifier.ChatNotifier,
	auditRepo repository.AuditRepository,
	publisher kafka.EventPublisher,
	collector *metrics.Collector,
) WebhookService {
	return &webhookService{
		authenticator:       authenticator,
		normalizer:          normalizer,
		renderer:            renderer,
		notifier:            chatNotifier,
		auditRepo:           auditRepo,
		publisher:           publisher,
		metrics:             collector,
		chatID:              cfg.Webhook.ChatID,
		table:               cfg.Audit.Table,
		auditOnNotifyFailed: cfg.Audit.AuditOnNotifyFailed,
		now:                 time.Now,
	}
}

func (s *webhookService) Authenticate(headers http.Header) bool {
	return s.authenticator.Authenticate(headers)
}

func (s *webhookService) HandleEvent(ctx context.Context, raw *model.RawEvent, sourceAddr string) (*dto.DispatchResult, error) {
	start := time.Now()
	defer s.metrics.ObserveDispatch(start)

	raw.Source = sourceAddr
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	event := s.normalizer.Normalize(raw)
	message := s.renderer.Render(event)

	delivery, sendErr := s.notifier.Send(ctx, message, s.chatID)
	if sendErr == nil && delivery == nil {
		sendErr = notifier.ErrMalformedResponse
	}
	if sendErr != nil {
		s.metrics.ObserveChatFailure()
		log.Error().Err(sendErr).
			Str("source", event.Source).
			Str("alert", event.Alert).
			Str("hostname", event.Hostname).
			Msg("Failed to send Log Insight alert to chat")
		if !s.auditOnNotifyFailed {
			return nil, &NotifierError{Err: sendErr}
		}
	}

	var chatMessageID *string
	if sendErr == nil {
		id := delivery.ID
		chatMessageID = &id
	}

	s.logEvent(event, chatMessageID)
	audited := s.writeAudit(ctx, raw, chatMessageID)

	if sendErr != nil {
		return nil, &NotifierError{Err: sendErr, Audited: audited}
	}

	dispatched := model.DispatchedEvent{Event: event, ChatMessageID: delivery.ID, Audited: audited}
	if err := s.publisher.Publish(ctx, dispatched); err != nil {
		log.Warn().Err(err).Str("hostname", event.Hostname).Msg("Failed to publish dispatched event")
	}

	return &dto.DispatchResult{
		Hostname:      event.Hostname,
		Alert:         event.Alert,
		Source:        event.Source,
		ChatMessageID: delivery.ID,
		Audited:       audited,
	}, nil
}

func (s *webhookService) logEvent(event model.NormalizedEvent, chatMessageID *string) {
	entry := log.Info().
		Str("source", event.Source).
		Str("alert", event.Alert).
		Str("hostname", event.Hostname).
		Str("url", event.URL)
	if eventTime, err := util.ParseTimeFlexible(event.Time); err == nil {
		entry = entry.Time("event_time", eventTime)
	} else {
		entry = entry.Str("event_time", event.Time)
	}
	if chatMessageID != nil {
		entry = entry.Str("chat_message_id", *chatMessageID)
	}
	entry.Msg("Log Insight event")
}

// writeAudit persists the audit row. Failures are logged and counted only.
func (s *webhookService) writeAudit(ctx context.Context, raw *model.RawEvent, chatMessageID *string) bool {
	record, err := buildAuditRecord(raw, chatMessageID, s.now())
	if err != nil {
		s.metrics.ObserveAuditFailure("invalid_source")
		log.Error().Err(err).Str("source", raw.Source).Msg("Cannot build audit record for Log Insight event")
		return false
	}

	if err := s.auditRepo.Insert(ctx, s.table, record); err != nil {
		s.metrics.ObserveAuditFailure("database")
		log.Error().Err(err).Str("table", s.table).Str("device", record.Device).Msg("Failed to write Log Insight audit record")
		return false
	}
	return true
}

// buildAuditRecord reads the raw event again; the audit fallbacks differ from
// the ones used for the chat message.
func buildAuditRecord(raw *model.RawEvent, chatMessageID *string, now time.Time) (model.AuditRecord, error) {
	source, err := util.IPv4ToUint32(raw.Source)
	if err != nil {
		return model.AuditRecord{}, fmt.Errorf("failed to encode source address: %w", err)
	}

	hostname, ok := raw.Hostname()
	if !ok {
		hostname = model.AuditHostnameFallback
	}
	description, _ := raw.Description()

	return model.AuditRecord{
		Device:      hostname,
		Event:       raw.Source,
		Description: strings.ReplaceAll(description, "'", ""),
		LogDate:     now.Format(model.AuditDateLayout),
		LogTime:     now.Format(model.AuditTimeLayout),
		Source:      source,
		Message:     chatMessageID,
	}, nil
}
