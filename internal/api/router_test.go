package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prafullkumar/chronos/internal/app"
	iauth "github.com/prafullkumar/chronos/internal/auth"
	"github.com/prafullkumar/chronos/internal/cache"
	"github.com/prafullkumar/chronos/internal/database/testutil"
	"github.com/prafullkumar/chronos/internal/notifications"
	"github.com/prafullkumar/chronos/internal/scheduler"
	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/internal/store"
)

type acceptAllIdentity struct{}

func (acceptAllIdentity) Verify(ctx context.Context, rawIDToken string) (*iauth.Identity, error) {
	return &iauth.Identity{Subject: "uid-1", DisplayName: "Asha"}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	docs, err := store.NewDocuments(db)
	require.NoError(t, err)

	hub := notifications.NewHub()
	dispatcher := notifications.NewDispatcher(db, hub)
	alarms := scheduler.NewAlarmScheduler(dispatcher)
	t.Cleanup(alarms.Stop)

	memory := cache.NewMemory()
	reminders, err := services.NewReminderService(docs, nil, alarms, memory, hub)
	require.NoError(t, err)
	home, err := services.NewHomeService(docs, memory)
	require.NoError(t, err)
	users, err := services.NewUserService(docs)
	require.NoError(t, err)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)
	authService, err := iauth.NewService(acceptAllIdentity{}, jwt, users)
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Monitoring.Prometheus.Enabled = true

	router, err := NewRouter(cfg, Deps{
		JWT:       jwt,
		Auth:      authService,
		Users:     users,
		Reminders: reminders,
		Home:      home,
		Hub:       hub,
	})
	require.NoError(t, err)
	return router, jwt
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "chronos_")
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/reminders", "/api/auth/me"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouterRequiresCoreDeps(t *testing.T) {
	_, err := NewRouter(nil, Deps{})
	require.Error(t, err)

	_, err = NewRouter(&app.Config{}, Deps{})
	require.Error(t, err)
}
