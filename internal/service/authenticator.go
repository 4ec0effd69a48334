package service

import (
	"crypto/subtle"
	"net/http"

	"loginsight-webhook/config"

	"github.com/rs/zerolog/log"
)

// unauthenticatedMarker is the header value Log Insight sends when no
// credentials are configured on the webhook.
const unauthenticatedMarker = "undefined"

// Authenticator decides whether a webhook request may be processed.
type Authenticator interface {
	Authenticate(headers http.Header) bool
}

type sharedSecretAuthenticator struct {
	usernameHeader string
	passwordHeader string
	username       string
	password       string
}

func NewAuthenticator(cfg *config.Config) Authenticator {
	return &sharedSecretAuthenticator{
		usernameHeader: cfg.Webhook.AuthHeader,
		passwordHeader: cfg.Webhook.AuthHeaderSecret,
		username:       cfg.Webhook.Username,
		password:       cfg.Webhook.Password,
	}
}

// Authenticate accepts requests with no username header or the "undefined"
// marker (fail-open). Any other value, empty included, must match the
// configured pair.
func (a *sharedSecretAuthenticator) Authenticate(headers http.Header) bool {
	sentUsername := headers.Get(a.usernameHeader)
	if len(headers.Values(a.usernameHeader)) == 0 || sentUsername == unauthenticatedMarker {
		log.Warn().Msg("Log Insight: Unauthenticated webhook")
		return true
	}
	sentPassword := headers.Get(a.passwordHeader)

	userOK := subtle.ConstantTimeCompare([]byte(sentUsername), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(sentPassword), []byte(a.password)) == 1
	if !userOK || !passOK {
		log.Warn().Str("username", sentUsername).Msg("Log Insight: webhook credentials rejected")
		return false
	}
	return true
}
