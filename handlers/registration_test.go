package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/middleware"
	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/services"
)

type mockRegistry struct {
	registrations []models.DeviceRegistration
	registerErr   error
	pingStatus    int
	pingBody      []byte
	pingErr       error
}

func (m *mockRegistry) RegisterDevice(_ context.Context, reg models.DeviceRegistration) error {
	m.registrations = append(m.registrations, reg)
	return m.registerErr
}

func (m *mockRegistry) Ping(_ context.Context) (int, []byte, error) {
	return m.pingStatus, m.pingBody, m.pingErr
}

func newRegistrationRouter(registry *mockRegistry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(zap.NewNop(), registry)

	r := gin.New()
	r.POST("/api/v1/passes/v1/devices/:deviceLibraryIdentifier/registrations/:passTypeIdentifier/:serialNumber",
		middleware.ApplePassAuth(), h.Register)
	r.GET("/test-push-token", h.TestPushToken)
	return r
}

const registrationPath = "/api/v1/passes/v1/devices/device-123/registrations/pass.com.example/serial-456"

func TestRegister(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		body        string
		registerErr error
		expectCode  int
		expectCalls int
	}{
		{
			name:        "successful registration",
			authHeader:  "ApplePass token-abc",
			body:        `{"pushToken":"push-token-1"}`,
			expectCode:  http.StatusCreated,
			expectCalls: 1,
		},
		{
			name:        "missing authorization header",
			authHeader:  "",
			body:        `{"pushToken":"push-token-1"}`,
			expectCode:  http.StatusUnauthorized,
			expectCalls: 0,
		},
		{
			name:        "wrong auth scheme",
			authHeader:  "Bearer token-abc",
			body:        `{"pushToken":"push-token-1"}`,
			expectCode:  http.StatusUnauthorized,
			expectCalls: 0,
		},
		{
			name:        "scheme without token",
			authHeader:  "ApplePass ",
			body:        `{"pushToken":"push-token-1"}`,
			expectCode:  http.StatusUnauthorized,
			expectCalls: 0,
		},
		{
			name:        "missing push token",
			authHeader:  "ApplePass token-abc",
			body:        `{}`,
			expectCode:  http.StatusBadRequest,
			expectCalls: 0,
		},
		{
			name:        "malformed body",
			authHeader:  "ApplePass token-abc",
			body:        `{`,
			expectCode:  http.StatusBadRequest,
			expectCalls: 0,
		},
		{
			name:        "webhook rejects record",
			authHeader:  "ApplePass token-abc",
			body:        `{"pushToken":"push-token-1"}`,
			registerErr: &services.WebhookStatusError{StatusCode: 403},
			expectCode:  http.StatusBadGateway,
			expectCalls: 1,
		},
		{
			name:        "webhook unreachable",
			authHeader:  "ApplePass token-abc",
			body:        `{"pushToken":"push-token-1"}`,
			registerErr: assert.AnError,
			expectCode:  http.StatusInternalServerError,
			expectCalls: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry := &mockRegistry{registerErr: tc.registerErr}
			router := newRegistrationRouter(registry)

			req := httptest.NewRequest(http.MethodPost, registrationPath, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectCode, w.Code)
			assert.Len(t, registry.registrations, tc.expectCalls)
		})
	}
}

func TestRegister_ForwardsNormalizedRecord(t *testing.T) {
	registry := &mockRegistry{}
	router := newRegistrationRouter(registry)

	req := httptest.NewRequest(http.MethodPost, registrationPath, bytes.NewBufferString(`{"pushToken":"push-token-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApplePass token-abc")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.DeviceRegistration{
		SerialNumber:            "serial-456",
		DeviceLibraryIdentifier: "device-123",
		PushToken:               "push-token-1",
	}, registry.registrations[0])
}

func TestTestPushToken_EchoesWebhook(t *testing.T) {
	registry := &mockRegistry{pingStatus: http.StatusAccepted, pingBody: []byte(`{"ok":true}`)}
	router := newRegistrationRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/test-push-token", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, `{"ok":true}`, w.Body.String())
}

func TestTestPushToken_WebhookUnreachable(t *testing.T) {
	registry := &mockRegistry{pingErr: assert.AnError}
	router := newRegistrationRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/test-push-token", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
