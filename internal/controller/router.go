package controller

import (
	"fmt"
	"time"

	"loginsight-webhook/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// NewRouter builds the gin engine with recovery, request ids and CORS.
// The audit source address comes from ClientIP, so forwarded headers are
// only honoured from cfg.TrustedProxies.
func NewRouter(cfg config.ServerConfig) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	if len(cfg.TrustedProxies) > 0 {
		log.Info().Strs("trusted_proxies", cfg.TrustedProxies).Msg("Honouring X-Forwarded-For from trusted proxies")
	}

	r.Use(gin.Recovery())
	r.Use(RequestID())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-LI-Username", "X-LI-Password", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	return r, nil
}
