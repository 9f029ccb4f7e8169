package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/assistant"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	orders, err := newOrderRepository(cfg, log)
	if err != nil {
		return err
	}
	defer orders.Close()

	pub := newPublisher(cfg, log)
	defer pub.Close()

	sessionCache, closeCache, err := newSessionCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	gateway := assistant.NewGateway(ctx, assistant.Config{
		APIKey:      cfg.Assistant.APIKey,
		Model:       cfg.Assistant.Model,
		BaseURL:     cfg.Assistant.BaseURL,
		Temperature: &cfg.Assistant.Temperature,
		Timeout:     cfg.Assistant.Timeout,
	}, log)

	registry := session.NewRegistry(session.Config{
		Deps: service.Dependencies{
			Auth:      auth.NewMockAuthenticator(cfg.Mock.SignInDelay, cfg.Mock.SignOutDelay),
			Orders:    orders,
			Publisher: pub,
			Logger:    log.Named("controller"),
			Timeout:   cfg.CollaboratorTimeout,
		},
		Advisor:      gateway,
		HistoryTurns: cfg.Assistant.HistoryTurns,
		IdleTimeout:  cfg.Session.IdleTimeout,
	}, sessionCache, log)
	defer registry.Close()

	router := h.NewRouter(h.RouterConfig{
		Catalog:          cat,
		Sessions:         registry,
		AssistantEnabled: gateway.Enabled(),
		RequestTimeout:   cfg.HTTP.RequestTimeout,
		SessionTTL:       cfg.Session.TTL,
		SecureCookie:     cfg.HTTP.SecureCookie,
		Logger:           log.Named("http"),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func newOrderRepository(cfg *config.Config, log *zap.Logger) (repository.OrderRepository, error) {
	if cfg.Orders.Driver != "postgres" {
		log.Info("using in-memory order store", zap.Duration("save_delay", cfg.Mock.SaveDelay))
		return repository.NewMemoryRepository(cfg.Mock.SaveDelay), nil
	}

	repo, err := repository.NewPostgresRepository(postgresCredentials(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to orders database: %w", err)
	}
	if err := repo.RunMigrations(); err != nil {
		_ = repo.Close()
		return nil, err
	}
	log.Info("using postgres order store", zap.String("host", cfg.Orders.Host))
	return repo, nil
}

func newPublisher(cfg *config.Config, log *zap.Logger) publisher.OrderPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return publisher.NopPublisher{}
	}
	log.Info("publishing order events",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return publisher.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
}

func newSessionCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.SessionCache, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info("session cache disabled, sessions live in memory only")
		return cache.NopCache{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("session cache enabled", zap.String("addr", cfg.Redis.Addr))
	return cache.NewRedisCache(client, cfg.Session.TTL), func() { _ = client.Close() }, nil
}
