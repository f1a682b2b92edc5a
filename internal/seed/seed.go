// Package seed заполняет пустую таблицу рейсов начальными данными.
//
// Seeder вызывается Poller'ом один раз перед первым рабочим тиком.
// Решение «нужно ли заполнять» принимает хранилище (проверка пустоты
// внутри транзакции), а не флаг в памяти процесса, поэтому
// несколько инстансов не заполнят таблицу дважды.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shaiso/ifs/internal/domain"
)

// Store — операция хранилища, нужная для seed.
type Store interface {
	InsertBatchIfEmpty(ctx context.Context, flights []domain.Flight) (bool, error)
}

// Seeder заполняет таблицу, если она пуста.
type Seeder struct {
	store   Store
	logger  *slog.Logger
	flights func(now time.Time) []domain.Flight
	clock   func() time.Time
}

// Config — конфигурация Seeder.
type Config struct {
	Store  Store
	Logger *slog.Logger

	// Flights строит набор рейсов относительно now (default: DemoFlights).
	Flights func(now time.Time) []domain.Flight

	// Clock — источник времени (default: time.Now).
	Clock func() time.Time
}

// New создаёт новый Seeder.
func New(cfg Config) *Seeder {
	flights := cfg.Flights
	if flights == nil {
		flights = DemoFlights
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Seeder{
		store:   cfg.Store,
		logger:  logger,
		flights: flights,
		clock:   clock,
	}
}

// SeedIfEmpty заполняет таблицу, если в ней нет ни одной строки.
// Возвращает true, если вставка была выполнена этим вызовом.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (bool, error) {
	flights := s.flights(s.clock())

	inserted, err := s.store.InsertBatchIfEmpty(ctx, flights)
	if err != nil {
		return false, fmt.Errorf("seed flights: %w", err)
	}

	if inserted {
		s.logger.Info("seeded flights", "count", len(flights))
	} else {
		s.logger.Debug("flights table already populated, seed skipped")
	}
	return inserted, nil
}

// DemoFlights возвращает демонстрационный набор рейсов DL1–DL14,
// разложенных вокруг окон +4h и +40m так, чтобы они по очереди
// попадали в окна в течение ~10 минут работы.
func DemoFlights(now time.Time) []domain.Flight {
	far := now.Add(4 * time.Hour)
	near := now.Add(40 * time.Minute)

	departures := []time.Time{
		far.Add(-2 * time.Minute),
		near.Add(-30 * time.Second),
		far,
		near.Add(time.Minute),
		far.Add(time.Minute),
		near.Add(time.Minute),
		far.Add(4 * time.Minute),
		near.Add(5 * time.Minute),
		far.Add(6 * time.Minute),
		near.Add(7 * time.Minute),
		far.Add(8 * time.Minute),
		near.Add(9 * time.Minute),
		far.Add(10 * time.Minute),
		near.Add(10 * time.Minute),
	}

	flights := make([]domain.Flight, len(departures))
	for i, dep := range departures {
		flights[i] = domain.Flight{
			Carrier:      "DL",
			FlightNumber: strconv.Itoa(i + 1),
			Origin:       "ATL",
			Destination:  "JFK",
			DepartureAt:  dep.UTC().Truncate(time.Microsecond),
		}
	}
	return flights
}
