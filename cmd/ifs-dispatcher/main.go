// IFS Dispatcher — потребляет события flight.claimed.
//
// Dispatcher читает очередь flights.claimed и выполняет для каждого
// захваченного рейса логирующее действие. Сообщения, которые не удалось
// разобрать, уходят в DLQ.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/ifs/internal/action"
	"github.com/shaiso/ifs/internal/mq"
	"github.com/shaiso/ifs/internal/telemetry"
)

func main() {
	logger, closeLog := telemetry.SetupLogger()
	defer closeLog()
	logger.Info("starting ifs-dispatcher")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL
	}

	conn, err := mq.NewConnection(mqURL, logger, mq.DeclareTopology)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	act := action.NewLog(logger)
	consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
		Queue: mq.QueueFlightsClaimed,
		Handler: func(ctx context.Context, msg *mq.Message) error {
			payload, err := mq.ParsePayload[mq.FlightClaimedPayload](msg)
			if err != nil {
				return err
			}
			return act.Process(ctx, payload.Flight())
		},
	})

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !conn.IsConnected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("rabbitmq disconnected"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("DISPATCHER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("ifs-dispatcher stopped")
}
