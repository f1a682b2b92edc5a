// Package action содержит действия над захваченными рейсами.
//
// Действие вызывается Poller'ом не более одного раза на успешный
// захват. Повторов и отката захвата нет: если действию нужна
// идемпотентность или retry, оно реализует их само.
package action

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/ifs/internal/domain"
)

// Func адаптирует функцию к scheduler.Processor.
type Func func(ctx context.Context, flight *domain.Flight) error

// Process вызывает f.
func (f Func) Process(ctx context.Context, flight *domain.Flight) error {
	return f(ctx, flight)
}

// Processor — то же, что scheduler.Processor; объявлен здесь,
// чтобы Chain не зависел от пакета scheduler.
type Processor interface {
	Process(ctx context.Context, flight *domain.Flight) error
}

// Log — базовое действие: пишет рейс в лог и запоминает его ID.
type Log struct {
	logger *slog.Logger
	clock  func() time.Time

	mu        sync.Mutex
	processed []int64
}

// NewLog создаёт Log.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, clock: time.Now}
}

// Process логирует рейс.
func (l *Log) Process(_ context.Context, flight *domain.Flight) error {
	l.logger.Info("process flight",
		"flight_id", flight.ID,
		"flight", flight.Designator(),
		"origin", flight.Origin,
		"destination", flight.Destination,
		"departure_at", flight.DepartureAt,
		"processed_at", l.clock(),
	)

	l.mu.Lock()
	l.processed = append(l.processed, flight.ID)
	l.mu.Unlock()
	return nil
}

// Processed возвращает ID обработанных рейсов в порядке обработки.
func (l *Log) Processed() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.processed...)
}

// Chain выполняет действия по порядку.
// Ошибка одного действия не отменяет следующие; ошибки объединяются.
func Chain(actions ...Processor) Processor {
	return Func(func(ctx context.Context, flight *domain.Flight) error {
		var errs []error
		for _, a := range actions {
			if err := a.Process(ctx, flight); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
