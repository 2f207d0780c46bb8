package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/senira34/lolipop-wear/internal/cache"
	"github.com/senira34/lolipop-wear/internal/catalog"
	"github.com/senira34/lolipop-wear/internal/config"
	"github.com/senira34/lolipop-wear/internal/events"
	h "github.com/senira34/lolipop-wear/internal/http"
	"github.com/senira34/lolipop-wear/internal/logger"
	"github.com/senira34/lolipop-wear/internal/orders"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/repository"
)

const maxRequestBodySize = 1 << 20 // 1MB

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.IsProduction(), slog.LevelInfo)
	slog.SetDefault(log)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	mongoDB, err := repository.ConnectMongoDB(connectCtx, repository.MongoOptions{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "lolipop-storefront",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		MinPoolSize: cfg.Mongo.MinPoolSize,
	})
	if err != nil {
		return err
	}
	defer mongoDB.Client().Disconnect(context.Background())
	log.Info("connected to MongoDB", "database", cfg.Mongo.Database)

	productRepo := repository.NewMongoProductRepository(mongoDB)
	if err := productRepo.CreateIndexes(connectCtx); err != nil {
		return err
	}

	var catalogCache cache.CatalogCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(connectCtx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		catalogCache = cache.NewRedisCache(redisClient)
		log.Info("catalog cache enabled", "addr", cfg.Redis.Addr)
	}

	orderRepo, closeOrders, err := openOrderStore(connectCtx, cfg, mongoDB, log)
	if err != nil {
		return err
	}
	defer closeOrders()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer kp.Close()
		publisher = kp
		log.Info("publishing order events", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, payment intents will fail")
	}
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.PaymentBreaker(), nil)

	router := h.NewRouter(h.RouterConfig{
		Catalog:            catalog.NewService(productRepo, catalogCache, log),
		Orders:             orders.NewService(orderRepo, publisher, log),
		Gateway:            gateway,
		Rules:              cfg.PricingRules(),
		Logger:             log,
		Production:         cfg.IsProduction(),
		RequestTimeout:     cfg.HTTP.RequestTimeout,
		MaxRequestBodySize: maxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTP.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func openOrderStore(ctx context.Context, cfg *config.Config, mongoDB *mongo.Database, log *slog.Logger) (repository.OrderRepository, func(), error) {
	switch cfg.Orders.Store {
	case config.OrderStorePostgres:
		cred := cfg.PostgresCredentials()
		repo, err := repository.NewPostgresOrderRepository(cred)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.RunMigrations(cred); err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		log.Info("orders stored in PostgreSQL", "host", cred.Host, "db", cred.DBName)
		return repo, func() { _ = repo.Close() }, nil
	default:
		repo := repository.NewMongoOrderRepository(mongoDB)
		if err := repo.CreateIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}
