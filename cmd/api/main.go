package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brn-maker/time-manager-ai2/internal/ai"
	"github.com/brn-maker/time-manager-ai2/internal/api"
	"github.com/brn-maker/time-manager-ai2/internal/auth"
	"github.com/brn-maker/time-manager-ai2/internal/config"
	"github.com/brn-maker/time-manager-ai2/internal/domain"
	"github.com/brn-maker/time-manager-ai2/internal/outbox"
	"github.com/brn-maker/time-manager-ai2/internal/payments"
	persistence "github.com/brn-maker/time-manager-ai2/internal/persistence/postgres"
	"github.com/brn-maker/time-manager-ai2/internal/summary"
	httptransport "github.com/brn-maker/time-manager-ai2/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc := time.Local
	if cfg.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid TIMEZONE %q: %v", cfg.Timezone, err)
		}
		loc = parsed
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	activityRepo := persistence.NewActivityRepository(pool, loc)
	goalRepo := persistence.NewGoalRepository(pool)
	credits := persistence.NewCreditStore(pool)

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	go dispatcher.Start(ctx)

	tracker := domain.NewService(activityRepo, goalRepo, loc)
	generator := ai.NewClient(ai.Config{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
	})
	summaries := summary.NewService(tracker, credits, generator)

	var paystackClient *payments.Client
	if cfg.PaystackSecretKey != "" {
		paystackClient = payments.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL)
	}
	webhook := payments.NewProcessor(credits)

	handler := api.NewHandler(tracker, summaries, paystackClient, webhook, cfg.PaystackWebhookKey)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	skipper := func(r *http.Request) bool {
		switch r.URL.Path {
		case "/healthz", "/metrics", "/v1/payments/webhook":
			return true
		}
		return false
	}
	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, skipper)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(logger(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("tracker API listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	dispatcher.Wait()
}
