package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"kindred/internal/family"
	"kindred/internal/member/handler"
	"kindred/internal/member/store"
	memstore "kindred/internal/member/store/memory"
	pgstore "kindred/internal/member/store/postgres"
	"kindred/internal/notification"
	"kindred/internal/notification/publisher"
	"kindred/internal/notification/queue"
	"kindred/internal/notification/worker"
	"kindred/internal/platform/config"
	"kindred/internal/platform/httpserver"
	"kindred/internal/platform/logger"
	"kindred/internal/platform/metrics"
	platformredis "kindred/internal/platform/redis"
	memsync "kindred/internal/sync"
	id "kindred/pkg/domain"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	members, cleanup, err := buildMemberStore(ctx, cfg, log)
	if err != nil {
		log.Error("member store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	messages, err := buildMessageQueue(ctx, cfg, log)
	if err != nil {
		log.Error("message queue init failed", "error", err)
		os.Exit(1)
	}

	sink, closeSink, err := buildSink(cfg, log)
	if err != nil {
		log.Error("notification sink init failed", "error", err)
		os.Exit(1)
	}
	defer closeSink()

	m := metrics.New()
	inbox := make(chan id.TenantID, 64)

	syncer := memsync.New(members, family.New(family.WithLogger(log)),
		memsync.WithLogger(log),
		memsync.WithMetrics(m),
		memsync.WithNotify(inbox),
	)

	workerOpts := []worker.Option{worker.WithLogger(log), worker.WithMetrics(m)}
	if len(cfg.Kafka.Brokers) > 0 {
		// Keep batches observable while the broker is down.
		workerOpts = append(workerOpts, worker.WithFallback(&logSink{logger: log}))
	}
	w := worker.New(members, messages, sink, inbox, workerOpts...)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	handler.New(syncer, members, messages, log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kindred", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := w.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func buildMemberStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.MemberStore, func(), error) {
	if cfg.Postgres.DSN == "" {
		log.Info("using in-memory member store")
		return memstore.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}
	st := pgstore.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("using postgres member store")
	return st, pool.Close, nil
}

func buildMessageQueue(ctx context.Context, cfg config.Config, log *slog.Logger) (queue.MessageQueue, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("using in-memory message queue")
		return queue.NewMemory(), nil
	}
	log.Info("using redis message queue")
	return queue.NewRedis(client.Client), nil
}

// logSink is the fallback when no Kafka brokers are configured: computed
// batches are logged instead of produced.
type logSink struct {
	logger *slog.Logger
}

func (s *logSink) Publish(ctx context.Context, tenantID id.TenantID, batch []notification.Notification) error {
	s.logger.InfoContext(ctx, "notifications computed",
		"tenant_id", tenantID,
		"count", len(batch))
	return nil
}

func buildSink(cfg config.Config, log *slog.Logger) (worker.Sink, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka not configured, logging notification batches")
		return &logSink{logger: log}, func() {}, nil
	}
	pub, err := publisher.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, publisher.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing notification batches", "topic", cfg.Kafka.Topic)
	return pub, pub.Close, nil
}
