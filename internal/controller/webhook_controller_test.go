package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/dto"
	"loginsight-webhook/internal/metrics"
	"loginsight-webhook/internal/model"
	"loginsight-webhook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWebhookService struct {
	authOK     bool
	result     *dto.DispatchResult
	err        error
	gotRaw     *model.RawEvent
	gotSource  string
	handleCall int
}

func (f *fakeWebhookService) Authenticate(headers http.Header) bool {
	return f.authOK
}

func (f *fakeWebhookService) HandleEvent(ctx context.Context, raw *model.RawEvent, sourceAddr string) (*dto.DispatchResult, error) {
	f.handleCall++
	f.gotRaw = raw
	f.gotSource = sourceAddr
	return f.result, f.err
}

func setupRouter(t *testing.T, svc service.WebhookService) (*gin.Engine, *metrics.Collector, *prometheus.Registry) {
	return setupRouterWithConfig(t, svc, config.ServerConfig{})
}

func setupRouterWithConfig(t *testing.T, svc service.WebhookService, cfg config.ServerConfig) (*gin.Engine, *metrics.Collector, *prometheus.Registry) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	router, err := NewRouter(cfg)
	require.NoError(t, err)
	RegisterWebhookRoutes(router, NewWebhookController(svc, collector))
	RegisterHealthRoutes(router, reg)
	return router, collector, reg
}

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/loginsight", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validBody = `{"alert_name":"DiskAlert","timestamp":"1667467800000","recommendation":"Free up space","url":"https://li.example","messages":[{"text":"disk full","fields":[{"content":"host-7"}]}]}`

func TestWebhookController_Dispatched(t *testing.T) {
	svc := &fakeWebhookService{
		authOK: true,
		result: &dto.DispatchResult{Hostname: "host-7", Alert: "DiskAlert", Source: "192.0.2.1", ChatMessageID: "m-1", Audited: true},
	}
	router, collector, _ := setupRouter(t, svc)

	w := postWebhook(router, validBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var resp struct {
		Message string             `json:"message"`
		Data    dto.DispatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "host-7", resp.Data.Hostname)
	assert.Equal(t, "m-1", resp.Data.ChatMessageID)
	assert.True(t, resp.Data.Audited)

	assert.Equal(t, "192.0.2.1", svc.gotSource)
	assert.Equal(t, "DiskAlert", svc.gotRaw.AlertName.Value)
	hostname, ok := svc.gotRaw.Hostname()
	assert.True(t, ok)
	assert.Equal(t, "host-7", hostname)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.RequestsTotal.WithLabelValues(metrics.OutcomeDispatched)))
}

func TestWebhookController_Unauthenticated(t *testing.T) {
	svc := &fakeWebhookService{authOK: false}
	router, collector, _ := setupRouter(t, svc)

	w := postWebhook(router, validBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, svc.handleCall)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.RequestsTotal.WithLabelValues(metrics.OutcomeUnauthenticated)))
}

func TestWebhookController_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCalled bool
	}{
		{name: "malformed json", body: `{"alert_name":`, wantStatus: http.StatusBadRequest},
		{name: "missing fields", body: `{}`, err: &model.MissingFieldError{Fields: []string{"alert_name"}}, wantStatus: http.StatusBadRequest, wantCalled: true},
		{name: "notifier failure", body: validBody, err: &service.NotifierError{Err: errors.New("503"), Audited: true}, wantStatus: http.StatusBadGateway, wantCalled: true},
		{name: "unexpected error", body: validBody, err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWebhookService{authOK: true, err: tt.err}
			router, _, _ := setupRouter(t, svc)

			w := postWebhook(router, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCalled, svc.handleCall == 1)
		})
	}
}

func TestWebhookController_KeepsInboundRequestID(t *testing.T) {
	router, _, _ := setupRouter(t, &fakeWebhookService{authOK: false})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/loginsight", strings.NewReader(validBody))
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestHealthRoutes(t *testing.T) {
	router, collector, _ := setupRouter(t, &fakeWebhookService{})
	collector.ObserveRequest(metrics.OutcomeDispatched)

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "loginsight_webhook_requests_total")
	})
}

func TestWebhookController_SourceAddress(t *testing.T) {
	tests := []struct {
		name           string
		trustedProxies []string
		wantSource     string
	}{
		{name: "forwarded header ignored by default", wantSource: "203.0.113.9"},
		{name: "forwarded header honoured from trusted proxy", trustedProxies: []string{"203.0.113.0/24"}, wantSource: "8.8.8.8"},
		{name: "forwarded header ignored from untrusted peer", trustedProxies: []string{"10.0.0.0/8"}, wantSource: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWebhookService{authOK: true, result: &dto.DispatchResult{}}
			router, _, _ := setupRouterWithConfig(t, svc, config.ServerConfig{TrustedProxies: tt.trustedProxies})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/loginsight", strings.NewReader(validBody))
			req.RemoteAddr = "203.0.113.9:5555"
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Forwarded-For", "8.8.8.8")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantSource, svc.gotSource)
		})
	}
}

func TestNewRouter_InvalidTrustedProxy(t *testing.T) {
	_, err := NewRouter(config.ServerConfig{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}
