package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callmood/internal/config"
	"callmood/internal/metrics"
	"callmood/internal/service"
	"callmood/internal/transport/ws"
)

func newTestRouter(t *testing.T, origins []string) (http.Handler, *service.AuthService) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	hub := ws.NewHub(logger)
	t.Cleanup(hub.Close)

	auth := service.NewAuthService(config.AuthConfig{Username: "admin", Password: "pw", JWTSecret: "secret", TokenTTL: time.Hour})
	return NewRouter(&Container{
		AuthService:    auth,
		WSHub:          hub,
		Metrics:        metrics.New(),
		Logger:         logger,
		AllowedOrigins: origins,
	}), auth
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "callmood_http_requests_total")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	t.Parallel()
	r, auth := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/calls", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login, err := auth.Login("admin", "pw")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"authenticated":true,"username":"admin"}`, rec.Body.String())
}

func TestLoginRoute(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, []string{"https://dash.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/calls", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/calls", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
