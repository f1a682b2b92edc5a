// IFS Scheduler — захватывает и обрабатывает рейсы в окнах упреждения.
//
// Scheduler:
//   - Заполняет пустую таблицу демо-рейсами (опционально)
//   - На каждом тике проходит по окнам по порядку
//   - В каждом окне захватывает не больше одного рейса
//   - Публикует flight.claimed в RabbitMQ, если брокер доступен
//   - Отправляет рейс на webhook, если он задан
//   - Отдаёт /api/v1/flights и /api/v1/windows для просмотра таблицы
//
// Инстансы масштабируются горизонтально: захват атомарен на стороне БД.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/ifs/internal/action"
	"github.com/shaiso/ifs/internal/api"
	"github.com/shaiso/ifs/internal/config"
	"github.com/shaiso/ifs/internal/mq"
	"github.com/shaiso/ifs/internal/repo"
	"github.com/shaiso/ifs/internal/scheduler"
	"github.com/shaiso/ifs/internal/seed"
	"github.com/shaiso/ifs/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: $IFS_CONFIG)")
	flag.Parse()

	logger, closeLog := telemetry.SetupLogger()
	defer closeLog()
	logger.Info("starting ifs-scheduler")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logger.With("instance", cfg.InstanceID)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := repo.Open(ctx, cfg.DB.Driver, cfg.DB.URL, cfg.DB.SQLitePath)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("store opened", "driver", cfg.DB.Driver)

	// Действие: лог + публикация, если есть брокер
	var act scheduler.Processor = action.NewLog(logger)
	if cfg.RabbitMQURL != "" {
		// Топология объявляется на каждом новом канале; без неё публикация не подключается.
		mqConn, err := mq.NewConnection(cfg.RabbitMQURL, logger, mq.DeclareTopology)
		if err != nil {
			logger.Warn("RabbitMQ not available, running in log-only mode", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")
			act = action.Chain(act, action.NewPublish(mq.NewPublisher(mqConn, logger), 0))
		}
	}

	if cfg.WebhookURL != "" {
		act = action.Chain(act, action.NewWebhook(action.WebhookConfig{URL: cfg.WebhookURL}))
		logger.Info("webhook enabled", "url", cfg.WebhookURL)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	pcfg := scheduler.Config{
		Store:    store,
		Action:   act,
		Windows:  cfg.Windows,
		Claimant: cfg.InstanceID,
		Logger:   logger,
		Metrics:  metrics,
	}
	if cfg.Seed {
		pcfg.Seeder = seed.New(seed.Config{Store: store, Logger: logger})
	}

	poller, err := scheduler.New(pcfg)
	if err != nil {
		logger.Error("invalid scheduler config", "error", err)
		os.Exit(1)
	}
	for _, w := range poller.Windows() {
		logger.Info("window configured", "window", w.String())
	}

	schedule, err := scheduler.ParseSchedule(cfg.Schedule, cfg.Interval)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}

	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		scheduler.NewRunner(schedule, logger, metrics).Run(ctx, func(ctx context.Context) {
			poller.Tick(ctx)
		})
	}()

	// HTTP mux: /healthz + /metrics + /api/v1
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	api.NewHandler(api.Config{
		Store:   store,
		Windows: poller.Windows,
		Logger:  logger,
	}).RegisterRoutes(mux)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	// Ждём завершения текущего тика
	<-runnerDone
	logger.Info("ifs-scheduler stopped")
}
