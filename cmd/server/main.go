// @title           Storefront API
// @version         1.0
// @description     Catalog, orders and point-of-sale backed by MongoDB with stock reserved transactionally.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/sirpyerre/storefront-api/docs"
	"github.com/sirpyerre/storefront-api/internal/api"
	"github.com/sirpyerre/storefront-api/internal/api/handler"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
	"github.com/sirpyerre/storefront-api/internal/core/service"
	mongostore "github.com/sirpyerre/storefront-api/internal/infrastructure/db/mongo"
	redisstore "github.com/sirpyerre/storefront-api/internal/infrastructure/db/redis"
	"github.com/sirpyerre/storefront-api/internal/infrastructure/mail"
	"github.com/sirpyerre/storefront-api/internal/infrastructure/messaging"
	"github.com/sirpyerre/storefront-api/internal/infrastructure/queue"
	"github.com/sirpyerre/storefront-api/internal/pkg/config"
	"github.com/sirpyerre/storefront-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// eventPublisher is a publisher that owns a connection to release on exit.
type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront-api",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure mongodb indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}

	// --- Outbound adapters ---
	var publisher eventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing events to kafka")
	} else {
		publisher = messaging.NewLogPublisher(logger.For("events"))
		log.Warn().Msg("KAFKA_BROKERS not set, events are only logged")
	}

	var mailer ports.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		mailer = mail.NewLogMailer(logger.For("mail"))
		log.Warn().Msg("SMTP_HOST not set, recovery codes are only logged")
	}

	dispatcher := queue.NewDispatcher(cfg.EventWorkers, publisher, logger.For("dispatcher"))
	dispatcher.Start(ctx)

	// --- Core ---
	products := mongostore.NewProductRepository(db)
	users := mongostore.NewUserRepository(db)
	tx := mongostore.NewTxManager(mongoClient)
	idem := redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, routes are not access controlled")
	}

	e := api.NewRouter(api.Deps{
		Catalog: service.NewCatalogService(products, logger.For("catalog")),
		Orders: service.NewOrderService(
			mongostore.NewOrderRepository(db), products, users, tx, idem, dispatcher, logger.For("orders"),
		),
		Sales: service.NewSaleService(
			mongostore.NewSaleRepository(db), products, tx, idem, dispatcher, logger.For("sales"),
		),
		Users:     service.NewUserService(users, mailer, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger.For("users")),
		Addresses: service.NewAddressService(mongostore.NewAddressRepository(db), logger.For("addresses")),
		Suppliers: service.NewSupplierService(mongostore.NewSupplierRepository(db), logger.For("suppliers")),

		Logger:         logger.For("http"),
		JWTSecret:      cfg.Auth.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		Readiness: []handler.DependencyCheck{
			{Name: "mongodb", Ping: mongostore.Pinger(mongoClient)},
			{Name: "redis", Ping: redisstore.Pinger(rdb)},
		},
	})

	go func() {
		addr := net.JoinHostPort("", cfg.Port)
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop taking requests first so no new events are enqueued, then drain.
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("event dispatcher drain")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("close event publisher")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("disconnect mongodb")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("close redis")
	}
	log.Info().Msg("bye")
}
