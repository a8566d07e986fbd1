package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"newsbot/internal/adapter/fetcher"
	"newsbot/internal/adapter/parser"
	"newsbot/internal/adapter/telegram"
	"newsbot/internal/config"
	"newsbot/internal/domain"
	"newsbot/internal/logger"
	server "newsbot/internal/transport/http"
	"newsbot/internal/usecase"
	"newsbot/internal/worker"
	"newsbot/storage"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	initTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App представляет основное приложение newsbot.
// Координирует работу всех компонентов: хранилища просмотренных статей,
// цикла опроса, рассылки, воркера и HTTP-сервера. Обеспечивает graceful startup и shutdown.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	store    storage.SeenStore
	notifier *usecase.PollAndNotifyUseCase
	server   *http.Server
	worker   *worker.Worker
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New создает и инициализирует приложение.
// Настраивает логгер, открывает и инициализирует хранилище, подключает отправителя
// уведомлений и собирает все зависимости. Конфигурация должна быть проверена заранее.
func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	store, err := OpenStore(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	sender, err := newSender(cfg, appLogger)
	if err != nil {
		store.Close()
		return nil, err
	}
	chatIDs := cfg.Telegram.ChatIDs
	if cfg.Telegram.Disabled && len(chatIDs) == 0 {
		chatIDs = []int64{0}
	}

	feeds := make([]domain.FeedDescriptor, 0, len(cfg.App.Feeds))
	for _, feed := range cfg.App.Feeds {
		feeds = append(feeds, domain.FeedDescriptor{Name: feed.Name, URL: feed.URL})
	}
	source := usecase.NewHTTPFeedSource(fetcher.NewHTTPFetcher(appLogger), parser.NewFeedParser(appLogger))
	dedup := usecase.NewDeduplicator(store, cfg.App.DedupMode, appLogger)
	cycle := usecase.NewPollCycle(feeds, source, dedup, cfg.App.Timeout(), cfg.App.Concurrency, appLogger)
	dispatcher := usecase.NewDispatcher(sender, chatIDs, appLogger)
	notifier := usecase.NewPollAndNotifyUseCase(cycle, dispatcher, appLogger)

	handler := server.NewHandler(appLogger, usecase.NewRecentArticlesUseCase(store), notifier)
	router := server.NewServer(appLogger, handler)

	return &App{
		config:   cfg,
		logger:   appLogger,
		store:    store,
		notifier: notifier,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:   worker.New(notifier, cfg.App.Interval(), cfg.App.Jitter(), appLogger),
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// OpenStore открывает хранилище, выбранное в database.driver, и вызывает Init.
func OpenStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.SeenStore, error) {
	log = log.With(slog.String("component", "database"), slog.String("driver", cfg.Database.Driver))
	var store storage.SeenStore
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		sqliteStore, err := storage.OpenSQLite(cfg.Database.Path, cfg.App.RecentLimit, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		store = sqliteStore
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		store = storage.NewPostgresSeenStore(pool, cfg.App.RecentLimit, log)
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Database.RedisAddr,
			Password: cfg.Database.Password,
		})
		store = storage.NewRedisSeenStore(client, cfg.App.RecentLimit, log)
	case config.DriverMemory:
		store = storage.NewMemorySeenStore(cfg.App.RecentLimit)
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to init store: %w", err)
	}
	log.Info("Seen store ready")
	return store, nil
}

func newSender(cfg *config.Config, log *slog.Logger) (usecase.Sender, error) {
	if cfg.Telegram.Disabled {
		log.Warn("Telegram delivery disabled, notifications go to the log", slog.String("component", "app"))
		return usecase.NewLogSender(log), nil
	}
	sender, err := telegram.NewSender(cfg.Telegram, log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup telegram sender: %w", err)
	}
	return sender, nil
}

// Run запускает воркер опроса и HTTP-сервер и блокируется до сигнала завершения.
// Возвращает ошибку, если не удалось открыть порт.
func (a *App) Run() error {
	a.logger.Info("Starting newsbot",
		slog.String("component", "app"),
		slog.Int("feed_count", a.notifier.FeedCount()),
		slog.String("poll_interval", a.worker.Interval().String()),
		slog.String("dedup_mode", a.config.App.DedupMode),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.store.Close()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.worker.Start()
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serverErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serverErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		_ = a.Shutdown()
		return fmt.Errorf("http server: %w", err)
	}
	return a.Shutdown()
}

// PollOnce выполняет один цикл опроса с рассылкой и закрывает хранилище.
// Используется командой poll.
func (a *App) PollOnce(ctx context.Context) error {
	defer a.store.Close()
	articles, report, err := a.notifier.Run(ctx)
	a.logger.Info("Poll finished",
		slog.String("component", "app"),
		slog.Int("new_articles", len(articles)),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)
	return err
}

// Shutdown выполняет graceful shutdown приложения.
// Останавливает воркер (дожидаясь текущего цикла), завершает HTTP-сервер,
// закрывает хранилище и ожидает завершения всех горутин.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	a.worker.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	a.wg.Wait()
	a.store.Close()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return nil
}

// Migrate открывает хранилище, создает схему и закрывает соединение.
func Migrate(ctx context.Context, cfg *config.Config) error {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	store, err := OpenStore(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	store.Close()
	appLogger.Info("Schema is up to date", slog.String("component", "app"))
	return nil
}
