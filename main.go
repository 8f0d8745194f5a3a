package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-dayreport/internal/accesslog"
	"ms-dayreport/internal/auth"
	"ms-dayreport/internal/config"
	"ms-dayreport/internal/invalidate"
	"ms-dayreport/internal/kafka"
	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/prefs"
	providerdb "ms-dayreport/internal/providers/db"
	"ms-dayreport/internal/report"
	"ms-dayreport/internal/report/api"
	"ms-dayreport/internal/report/cache"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- PostgreSQL Setup ---
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres connection: %v", err))
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	log.Info("DATABASE", "Connected to Postgres")

	// --- Redis Setup ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: 10,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("CACHE", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err))
	}
	log.Info("CACHE", "Connected to Redis at "+cfg.Redis.Addr)

	// --- Kafka Setup ---
	var accessSink accesslog.Publisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{
			cfg.Kafka.Topics.AccessLog,
		}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Failed to ensure topics exist: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.AccessLog)
		defer producer.Close()
		accessSink = producer
	} else {
		log.Warn("KAFKA", "Kafka disabled, access log entries will be dropped")
	}

	// --- Dependency Wiring ---
	providers := &providerdb.DB{Bun: bunDB}
	aggregator := report.NewAggregator(providers, providers, log)
	reportCache := cache.New(redisClient, aggregator, cfg.Report.CacheTTL, log)
	recorder := accesslog.NewRecorder(accessSink, log)
	prefStore := prefs.NewStore(bunDB)
	service := report.NewService(reportCache, recorder, prefStore, log)
	csrfStore := auth.NewCSRFStore(redisClient, cfg.Auth.CSRFTokenTTL)
	handler := api.NewHandler(service, csrfStore, log)

	// --- Invalidation Consumers ---
	if cfg.Kafka.Enabled {
		listener := invalidate.NewListener(reportCache, log)

		orderConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderEvents, cfg.Kafka.GroupID, log)
		defer orderConsumer.Close()
		go orderConsumer.Start(ctx, listener.HandleOrderEvent)

		eventConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.EventEvents, cfg.Kafka.GroupID, log)
		defer eventConsumer.Close()
		go eventConsumer.Start(ctx, listener.HandleEventEvent)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret, log))
		r.Use(auth.RequireCapability(cfg.Auth.Capability, log))
		handler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "Day report service running on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up")
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("SERVER", "Server exited gracefully")
}
