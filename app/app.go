package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-ledger-api/config"
	"bank-ledger-api/db"
	"bank-ledger-api/events"
	"bank-ledger-api/handler"
	"bank-ledger-api/logger"
	"bank-ledger-api/repository"
	"bank-ledger-api/repository/memory"
	"bank-ledger-api/router"
	"bank-ledger-api/service"
)

// App is a fully wired application.
type App struct {
	Router  http.Handler
	Store   repository.Store
	closers []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Log.WithError(err).Warn("Error while releasing resource")
		}
	}
}

// Build wires every layer from config.AppConfig.
func Build() (*App, error) {
	cfg := config.AppConfig
	a := &App{}

	switch cfg.Database.Driver {
	case "memory":
		a.Store = memory.NewStore()
		logger.Log.Warn("Using the in-memory store; data is lost on restart")
	default:
		database, err := db.Connect()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database.Close)
		if cfg.Database.MigrationsPath != "" {
			if err := db.Migrate(cfg.DSN(), cfg.Database.MigrationsPath); err != nil {
				a.Close()
				return nil, err
			}
		}
		a.Store = repository.NewPostgresStore(database, cfg.Database.Isolation)
	}

	var cache service.ICacheClient
	if cfg.Redis.Enabled {
		rdb, err := db.ConnectRedis()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		cache = rdb
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, kp.Close)
		publisher = kp
	}

	opts := service.EngineOptions{
		MaxConflictRetries: cfg.Engine.MaxConflictRetries,
		OperationTimeout:   cfg.Engine.OperationTimeout,
	}
	a.Router = wire(a.Store, cache, publisher, opts, cfg.Engine.AccountNumberAttempts, cfg.Redis.TTL, []byte(cfg.JWT.SecretKey))

	logger.Log.WithField("driver", cfg.Database.Driver).Info("Application wired")
	return a, nil
}

// NewTestApp wires the application over a fresh in-memory store with no
// cache and no event publishing.
func NewTestApp(secret []byte) *App {
	store := memory.NewStore()
	return &App{
		Store:  store,
		Router: wire(store, nil, events.NopPublisher{}, service.DefaultEngineOptions(), 0, 0, secret),
	}
}

func wire(store repository.Store, cache service.ICacheClient, publisher events.Publisher, opts service.EngineOptions, numberAttempts int, ttl time.Duration, secret []byte) http.Handler {
	directory := service.NewAccountDirectory(store.Accounts(), cache, ttl)
	numbers := service.NewAccountNumberGenerator(numberAttempts)

	transactionService := service.NewTransactionService(store, directory, publisher, opts)
	accountService := service.NewAccountService(store, directory, numbers, opts)

	return router.NewRouter(
		handler.NewUserHandler(accountService),
		handler.NewAccountHandler(accountService),
		handler.NewTransactionHandler(transactionService),
		handler.NewAuthMiddleware(secret),
	)
}

func Run() {
	if err := config.LoadConfig("."); err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Init(config.AppConfig.Log.Level, config.AppConfig.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	a, err := Build()
	if err != nil {
		logger.Log.Fatalf("Error wiring the application: %v", err)
	}
	defer a.Close()

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Log.Info("Server exited properly")
}
