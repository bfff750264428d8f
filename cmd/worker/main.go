package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/cliniga/cliniga-api/internal/config"
	"github.com/cliniga/cliniga-api/internal/email"
	"github.com/cliniga/cliniga-api/internal/repository/postgres"
	"github.com/cliniga/cliniga-api/pkg/logger"
	"github.com/cliniga/cliniga-api/pkg/messaging/redis"
	"github.com/cliniga/cliniga-api/pkg/metrics"
	"github.com/cliniga/cliniga-api/pkg/worker"
)

// workerEnv holds deployment-level overrides that only the worker
// process cares about. Everything else comes from the shared config.
type workerEnv struct {
	HealthPort   int  `envconfig:"HEALTH_PORT" default:"8081"`
	Notifier     bool `envconfig:"NOTIFIER" default:"true"`
	RedisRetries int  `envconfig:"REDIS_RETRIES" default:"3"`
	RedisPool    int  `envconfig:"REDIS_POOL" default:"10"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env workerEnv
	if err := envconfig.Process("worker", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker environment")
	}

	l := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:        cfg.Redis.URL,
		MaxRetries: env.RedisRetries,
		PoolSize:   env.RedisPool,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	userRepo := postgres.NewUserRepository(db)

	m := metrics.NewMetrics("cliniga", "worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		RetryDelay:   cfg.Outbox.RetryDelay,
	}, l, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if env.Notifier {
		notifier := email.NewNotifier(broker, email.NewSMTPService(cfg.SMTP), userRepo, l, m)
		go func() {
			if err := notifier.Start(ctx); err != nil {
				l.Error(err, "notifier stopped")
			}
		}()
	}

	startHealthServer(env.HealthPort, l)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("shutting down...")
		cancel()
	}()

	processor.Start(ctx)
}

func startHealthServer(port int, l *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			l.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
