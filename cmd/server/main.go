package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/prafullkumar/chronos/internal/api"
	"github.com/prafullkumar/chronos/internal/app"
	"github.com/prafullkumar/chronos/internal/app/maintenance"
	iauth "github.com/prafullkumar/chronos/internal/auth"
	"github.com/prafullkumar/chronos/internal/cache"
	"github.com/prafullkumar/chronos/internal/database"
	"github.com/prafullkumar/chronos/internal/notifications"
	"github.com/prafullkumar/chronos/internal/scheduler"
	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/internal/store"
	"github.com/prafullkumar/chronos/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chronos-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel, cfg.Server.LogFormat); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	docs, err := store.NewDocuments(db)
	if err != nil {
		return fmt.Errorf("initialise document store: %w", err)
	}

	blobs, err := store.NewFilesystemBlobs(cfg.Blob.Directory, cfg.Blob.BaseURL)
	if err != nil {
		return fmt.Errorf("initialise blob store: %w", err)
	}

	hub := notifications.NewHub()
	dispatcher := notifications.NewDispatcher(db, hub)

	alarms := scheduler.NewAlarmScheduler(dispatcher)
	defer alarms.Stop()

	memory := cache.NewMemory()

	reminderSvc, err := services.NewReminderService(docs, blobs, alarms, memory, hub)
	if err != nil {
		return fmt.Errorf("initialise reminder service: %w", err)
	}
	homeSvc, err := services.NewHomeService(docs, memory)
	if err != nil {
		return fmt.Errorf("initialise home service: %w", err)
	}
	userSvc, err := services.NewUserService(docs)
	if err != nil {
		return fmt.Errorf("initialise user service: %w", err)
	}

	if err := rescheduleAlarms(ctx, docs, alarms, log); err != nil {
		return err
	}

	jwtService, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	identity, err := iauth.NewOIDCVerifier(ctx, iauth.OIDCConfig{
		Issuer:   cfg.Auth.OIDC.Issuer,
		ClientID: cfg.Auth.OIDC.ClientID,
	})
	if err != nil {
		return fmt.Errorf("initialise identity provider: %w", err)
	}

	authService, err := iauth.NewService(identity, jwtService, userSvc)
	if err != nil {
		return fmt.Errorf("initialise auth service: %w", err)
	}

	var greetingSvc *services.GreetingService
	if cfg.Greeting.Enabled {
		greetingSvc, err = services.NewGreetingService(cfg.Greeting.BaseURL, &http.Client{Timeout: cfg.Greeting.Timeout})
		if err != nil {
			return fmt.Errorf("initialise greeting service: %w", err)
		}
	}

	if cfg.Maintenance.Enabled {
		sweeper, err := maintenance.NewSweeper(docs, reminderSvc, maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err != nil {
			return fmt.Errorf("initialise maintenance sweeper: %w", err)
		}
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("start maintenance sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	router, err := api.NewRouter(cfg, api.Deps{
		JWT:       jwtService,
		Auth:      authService,
		Users:     userSvc,
		Reminders: reminderSvc,
		Home:      homeSvc,
		Greetings: greetingSvc,
		Hub:       hub,
		BlobDir:   blobs.Root(),
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// alarmRecoveryLookback widens the restart query to reminders that elapsed
// while the process was down. The scheduler clamps those forward, so they
// still fire shortly after start-up instead of being lost.
const alarmRecoveryLookback = time.Hour

// rescheduleAlarms re-arms pending alarms after a restart. The in-process
// timer registry does not survive the process, the documents do.
func rescheduleAlarms(ctx context.Context, docs store.DocumentStore, alarms *scheduler.AlarmScheduler, log *zap.Logger) error {
	userIDs, err := docs.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users for alarm recovery: %w", err)
	}

	since := time.Now().Add(-alarmRecoveryLookback)
	restored := 0
	for _, userID := range userIDs {
		reminders, err := docs.ListReminders(ctx, userID, store.ReminderQuery{Since: &since})
		if err != nil {
			log.Warn("alarm recovery failed for user",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		for i := range reminders {
			alarms.ScheduleReminder(&reminders[i])
			restored++
		}
	}

	if restored > 0 {
		log.Info("alarms restored", zap.Int("count", restored))
	}
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = cfg.Database.Postgres.Password
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = cfg.Database.MySQL.Password
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to access underlying database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
