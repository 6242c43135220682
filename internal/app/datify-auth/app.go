// Package datifyauth собирает HTTP-приложение сервиса аутентификации:
// хранилище, миграции, ограничитель запросов, публикацию событий и маршруты.
package datifyauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/datify-auth/internal/cache"
	"github.com/magabrotheeeer/datify-auth/internal/config"
	"github.com/magabrotheeeer/datify-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/datify-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/datify-auth/internal/migrations"
	"github.com/magabrotheeeer/datify-auth/internal/ratelimit"
	services "github.com/magabrotheeeer/datify-auth/internal/services/auth"
	"github.com/magabrotheeeer/datify-auth/internal/storage/repository"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
}

// New инициализирует приложение по конфигу.
//
// Redis и RabbitMQ необязательны: пустой адрес Redis переключает
// ограничитель на локальные счетчики, пустой адрес AMQP отключает
// публикацию событий регистрации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	jwtMaker, err := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	var cacheRedis *cache.Cache
	var limiter ratelimit.Limiter
	if cfg.AddressRedis != "" {
		cacheRedis, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		limiter = ratelimit.NewRedisLimiter(cacheRedis.Db, cfg.MaxRequests, cfg.Window)
	} else {
		fixedWindow := ratelimit.NewFixedWindow(cfg.MaxRequests, cfg.Window)
		go fixedWindow.Run(ctx)
		limiter = fixedWindow
	}

	var amqpConn *amqp.Connection
	var events services.EventPublisher
	if cfg.AmqpAddress != "" {
		amqpConn, err = rabbitmq.Connect(cfg.AmqpAddress, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetAuthQueues())
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	}

	authService := services.NewAuthService(db, jwtMaker, events, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, db.DB, limiter)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
		amqpConn: amqpConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", slog.String("error", err.Error()))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.String("error", err.Error()))
		}
	}
}
