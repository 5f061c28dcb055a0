package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prafullkumar/chronos/internal/app"
	iauth "github.com/prafullkumar/chronos/internal/auth"
	"github.com/prafullkumar/chronos/internal/handlers"
	"github.com/prafullkumar/chronos/internal/middleware"
	"github.com/prafullkumar/chronos/internal/notifications"
	"github.com/prafullkumar/chronos/internal/services"
)

// Deps bundles the constructed services the router mounts.
type Deps struct {
	JWT       *iauth.JWTService
	Auth      *iauth.Service
	Users     *services.UserService
	Reminders *services.ReminderService
	Home      *services.HomeService
	// Greetings is optional; the endpoint is omitted when nil.
	Greetings *services.GreetingService
	Hub       *notifications.Hub
	// BlobDir, when set, is served read-only under the files route.
	BlobDir string
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(cfg *app.Config, deps Deps) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}
	if deps.Reminders == nil || deps.Home == nil {
		return nil, fmt.Errorf("reminder services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/healthz", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	if deps.BlobDir != "" {
		r.Static("/files", deps.BlobDir)
	}

	authHandler, err := handlers.NewAuthHandler(deps.Auth, deps.Users)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	r.POST("/api/auth/login", authHandler.Login)

	// Protected routes
	requireAuth := middleware.Auth(deps.JWT)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	reminderHandler, err := handlers.NewReminderHandler(deps.Reminders, deps.Home)
	if err != nil {
		return nil, err
	}
	reminders := api.Group("/reminders")
	{
		reminders.GET("", reminderHandler.List)
		reminders.POST("", reminderHandler.Create)
		reminders.DELETE("", reminderHandler.DeleteMany)
		reminders.GET("/:id", reminderHandler.Get)
		reminders.PUT("/:id", reminderHandler.Update)
		reminders.DELETE("/:id", reminderHandler.Delete)
	}

	if deps.Greetings != nil {
		greetingHandler, err := handlers.NewGreetingHandler(deps.Greetings)
		if err != nil {
			return nil, err
		}
		api.GET("/greeting", greetingHandler.Get)
	}

	if deps.Hub != nil {
		realtimeHandler, err := handlers.NewRealtimeHandler(deps.Hub, deps.JWT)
		if err != nil {
			return nil, err
		}
		// Token also arrives as a query parameter; the handler authenticates
		// itself instead of the shared middleware.
		r.GET("/api/notifications/ws", realtimeHandler.Stream)
	}

	return r, nil
}
