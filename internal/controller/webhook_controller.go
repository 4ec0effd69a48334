package controller

import (
	"errors"
	"net/http"

	"loginsight-webhook/internal/metrics"
	"loginsight-webhook/internal/model"
	"loginsight-webhook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type WebhookController struct {
	webhookService service.WebhookService
	metrics        *metrics.Collector
}

func NewWebhookController(webhookService service.WebhookService, collector *metrics.Collector) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		metrics:        collector,
	}
}

func RegisterWebhookRoutes(router *gin.Engine, controller *WebhookController) {
	v1 := router.Group("/api/v1/webhooks")
	{
		v1.POST("/loginsight", controller.HandleLogInsight)
	}
}

// HandleLogInsight receives a Log Insight alert webhook.
// Responses: 200 dispatched, 400 invalid body, 401 bad credentials, 502 chat failure.
func (c *WebhookController) HandleLogInsight(ctx *gin.Context) {
	requestID := ctx.GetString(RequestIDKey)

	if !c.webhookService.Authenticate(ctx.Request.Header) {
		c.metrics.ObserveRequest(metrics.OutcomeUnauthenticated)
		ctx.JSON(http.StatusUnauthorized, model.NewResponse(service.ErrUnauthenticated.Error(), nil))
		return
	}

	var raw model.RawEvent
	if err := ctx.ShouldBindJSON(&raw); err != nil {
		c.metrics.ObserveRequest(metrics.OutcomeInvalid)
		log.Warn().Err(err).Str("request_id", requestID).Msg("Invalid Log Insight webhook body")
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid JSON body", nil))
		return
	}

	result, err := c.webhookService.HandleEvent(ctx.Request.Context(), &raw, ctx.ClientIP())
	if err != nil {
		var missing *model.MissingFieldError
		var notifyErr *service.NotifierError
		switch {
		case errors.As(err, &missing):
			c.metrics.ObserveRequest(metrics.OutcomeInvalid)
			ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), gin.H{"missing": missing.Fields}))
		case errors.As(err, &notifyErr):
			c.metrics.ObserveRequest(metrics.OutcomeNotifierFailed)
			ctx.JSON(http.StatusBadGateway, model.NewResponse("Failed to deliver alert to chat", gin.H{"audited": notifyErr.Audited}))
		default:
			log.Error().Err(err).Str("request_id", requestID).Msg("Unexpected error handling Log Insight webhook")
			ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		}
		return
	}

	c.metrics.ObserveRequest(metrics.OutcomeDispatched)
	ctx.JSON(http.StatusOK, model.NewResponse("Event dispatched", result))
}
