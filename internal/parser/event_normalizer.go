package parser

import (
	"loginsight-webhook/internal/model"

	"github.com/rs/zerolog/log"
)

// EventNormalizer turns a raw webhook body into a NormalizedEvent. It never
// fails: every optional field has a fallback.
type EventNormalizer interface {
	Normalize(raw *model.RawEvent) model.NormalizedEvent
}

type logInsightNormalizer struct{}

func NewEventNormalizer() EventNormalizer {
	return &logInsightNormalizer{}
}

func (n *logInsightNormalizer) Normalize(raw *model.RawEvent) model.NormalizedEvent {
	event := model.NormalizedEvent{
		Source: raw.Source,
		Alert:  raw.AlertName.Value,
		Time:   raw.Timestamp.Value,
		URL:    raw.URL.Value,
	}

	// Each optional field is resolved on its own so one gap never drops the others.
	if hostname, ok := raw.Hostname(); ok {
		event.Hostname = hostname
	} else {
		event.Hostname = model.DefaultHostname
	}

	if description, ok := raw.Description(); ok {
		event.Description = description
	}

	event.Recommendation = normalizeRecommendation(raw.Recommendation)

	log.Trace().
		Str("source", event.Source).
		Str("alert", event.Alert).
		Str("hostname", event.Hostname).
		Msg("Normalized Log Insight event")
	return event
}

func normalizeRecommendation(raw model.OptionalString) string {
	if raw.Null || raw.Value == model.NullRecommendation {
		return model.DefaultRecommendation
	}
	return raw.Value
}
