package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/db"
	"github.com/noahbkim00/executive-ai-mvp/internal/http"
	httpH "github.com/noahbkim00/executive-ai-mvp/internal/http/handlers"
	"github.com/noahbkim00/executive-ai-mvp/internal/observability"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/logger"
	"github.com/noahbkim00/executive-ai-mvp/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services

	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger for cfg.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects to the configured store and migrates the intake tables.
func OpenDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(log, db.Config{
		Driver:     cfg.Database.Driver,
		DSN:        cfg.Database.DSN,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return theDB, nil
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Telemetry.Version,
		Endpoint:    cfg.Telemetry.Endpoint,
		Headers:     cfg.Telemetry.Headers,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	metrics := observability.New()

	theDB, err := OpenDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		_ = clients.Bus.Close()
		log.Sync()
		return nil, err
	}

	router := http.NewRouter(http.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         serviceName(cfg),
		CORSOrigins:         cfg.HTTP.CORSOrigins,
		ConversationHandler: httpH.NewConversationHandler(log, serviceset.Intake),
		HealthHandler:       httpH.NewHealthHandler(pingDB(theDB)),
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		shutdownOTel: shutdownOTel,
	}, nil
}

func serviceName(cfg Config) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	return cfg.Telemetry.ServiceName
}

func pingDB(theDB *gorm.DB) httpH.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := theDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Start launches background collectors and the conversation event forwarder.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, 15*time.Second)

	log := a.Log.With("service", "ConversationEvents")
	if err := a.Clients.Bus.StartForwarder(ctx, func(ev realtime.ConversationEvent) {
		log.Debug("Conversation event",
			"type", string(ev.Type),
			"conversation_id", ev.ConversationID,
			"phase", string(ev.Phase),
			"current_question", ev.CurrentQuestion,
			"total_questions", ev.TotalQuestions,
		)
	}); err != nil {
		a.Log.Warn("Conversation event forwarder not started", "error", err)
	}
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := http.NewServer(a.Log, a.Cfg.HTTP.Addr, a.Cfg.HTTP.ShutdownTimeout.Std(), a.Router)
	return srv.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.Close(); err != nil {
			a.Log.Warn("Closing conversation bus", "error", err)
		}
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("OTel shutdown", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
