package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/ifs/internal/domain"
	"github.com/shaiso/ifs/internal/repo"
	"github.com/shaiso/ifs/internal/telemetry"
)

// ClaimStore — операции хранилища, нужные Poller'у.
//
// FindCandidate и TryClaim намеренно не связаны транзакцией:
// два Poller'а могут прочитать одного кандидата, но TryClaim
// выиграет только один из них.
type ClaimStore interface {
	// FindCandidate возвращает незахваченный рейс с вылетом в (start, end)
	// или repo.ErrNotFound.
	FindCandidate(ctx context.Context, start, end time.Time) (*domain.Flight, error)

	// TryClaim атомарно помечает рейс захваченным.
	// false без ошибки означает, что рейс уже захвачен кем-то другим.
	TryClaim(ctx context.Context, id int64, claimant string) (bool, error)
}

// Processor — действие над захваченным рейсом.
// Вызывается не более одного раза на успешный захват.
type Processor interface {
	Process(ctx context.Context, flight *domain.Flight) error
}

// Seeder — одноразовое заполнение пустого хранилища.
type Seeder interface {
	SeedIfEmpty(ctx context.Context) (bool, error)
}

// Poller — планировщик, захватывающий рейсы в окнах упреждения.
type Poller struct {
	store    ClaimStore
	action   Processor
	seeder   Seeder
	claimant string
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	clock    func() time.Time

	mu      sync.RWMutex
	windows []domain.Window

	// running не даёт двум тикам одного процесса выполняться одновременно.
	running      sync.Mutex
	bootstrapped bool // защищён running
}

// Config — конфигурация Poller.
type Config struct {
	Store    ClaimStore
	Action   Processor
	Seeder   Seeder // опционально: nil — таблицу заполняет внешний продюсер
	Windows  []domain.Window
	Claimant string // идентификатор инстанса, пишется в claimed_by
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics // опционально
	Clock    func() time.Time   // опционально, default: time.Now
}

// New создаёт новый Poller.
func New(cfg Config) (*Poller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if cfg.Action == nil {
		return nil, fmt.Errorf("%w: action is required", ErrInvalidConfig)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Poller{
		store:    cfg.Store,
		action:   cfg.Action,
		seeder:   cfg.Seeder,
		claimant: cfg.Claimant,
		logger:   logger,
		metrics:  cfg.Metrics,
		clock:    clock,
	}

	windows := cfg.Windows
	if len(windows) == 0 {
		windows = domain.DefaultWindows()
	}
	if err := p.ConfigureWindows(windows); err != nil {
		return nil, err
	}
	return p, nil
}

// ConfigureWindows заменяет набор окон. Окна обрабатываются в заданном порядке.
func (p *Poller) ConfigureWindows(windows []domain.Window) error {
	if len(windows) == 0 {
		return fmt.Errorf("%w: at least one window is required", ErrInvalidWindow)
	}

	seen := make(map[string]struct{}, len(windows))
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		if _, dup := seen[w.Name]; dup {
			return fmt.Errorf("%w: duplicate window name %q", ErrInvalidWindow, w.Name)
		}
		seen[w.Name] = struct{}{}
	}

	p.mu.Lock()
	p.windows = append([]domain.Window(nil), windows...)
	p.mu.Unlock()
	return nil
}

// Windows возвращает копию текущего набора окон.
func (p *Poller) Windows() []domain.Window {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.Window(nil), p.windows...)
}

// TickReport — итог одного тика.
type TickReport struct {
	StartedAt time.Time
	Skipped   bool // предыдущий тик ещё выполнялся
	Results   []domain.CycleResult
}

// Processed возвращает ID рейсов, обработанных за тик.
func (r TickReport) Processed() []int64 {
	var ids []int64
	for _, res := range r.Results {
		if res.Outcome == domain.OutcomeProcessed {
			ids = append(ids, res.FlightID)
		}
	}
	return ids
}

// Tick выполняет один тик планировщика.
//
// 1. При первом тике (до первого успешного seed) вызывает Seeder
// 2. Для каждого окна по порядку: FindCandidate → TryClaim → Process
//
// Ошибки одного окна не блокируют обработку остальных,
// и никакая ошибка не возвращается таймеру.
func (p *Poller) Tick(ctx context.Context) TickReport {
	if !p.running.TryLock() {
		p.logger.Warn("previous tick still running, skipping")
		p.metrics.ObserveSkip()
		return TickReport{StartedAt: p.clock(), Skipped: true}
	}
	defer p.running.Unlock()

	began := time.Now()
	report := TickReport{StartedAt: p.clock()}

	p.bootstrap(ctx)

	for _, w := range p.Windows() {
		res := p.runCycle(ctx, w)
		p.record(res)
		report.Results = append(report.Results, res)
	}

	p.metrics.ObserveTick(time.Since(began))
	return report
}

// bootstrap вызывает Seeder, пока он не отработает успешно.
// Нужно ли вставлять данные, решает хранилище; флаг лишь
// избавляет от повторной проверки в этом процессе.
func (p *Poller) bootstrap(ctx context.Context) {
	if p.seeder == nil || p.bootstrapped {
		return
	}

	inserted, err := p.seeder.SeedIfEmpty(ctx)
	if err != nil {
		p.logger.Error("bootstrap failed, will retry on next tick", "error", err)
		p.metrics.ObserveBootstrap("failed")
		return
	}

	p.bootstrapped = true
	if inserted {
		p.metrics.ObserveBootstrap("inserted")
	} else {
		p.metrics.ObserveBootstrap("skipped")
	}
}

// runCycle выполняет один цикл claim-and-process для окна.
func (p *Poller) runCycle(ctx context.Context, w domain.Window) domain.CycleResult {
	res := domain.CycleResult{Window: w}
	start, end := w.Bounds(p.clock())

	// 1. Ищем кандидата
	flight, err := p.store.FindCandidate(ctx, start, end)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && flight == nil) {
		res.Outcome = domain.OutcomeNoCandidate
		return res
	}
	if err != nil {
		res.Outcome = domain.OutcomeStoreFailure
		res.Err = fmt.Errorf("%w: find candidate: %w", ErrStoreFailure, err)
		return res
	}
	res.FlightID = flight.ID

	// 2. Захватываем. Проигрыш гонки — не ошибка.
	claimed, err := p.store.TryClaim(ctx, flight.ID, p.claimant)
	if err != nil {
		res.Outcome = domain.OutcomeStoreFailure
		res.Err = fmt.Errorf("%w: claim flight %d: %w", ErrStoreFailure, flight.ID, err)
		return res
	}
	if !claimed {
		res.Outcome = domain.OutcomeClaimConflict
		return res
	}
	flight.MarkClaimed(p.claimant, p.clock())

	// 3. Обрабатываем. Рейс остаётся claimed даже при ошибке.
	if err := p.process(ctx, flight); err != nil {
		res.Outcome = domain.OutcomeProcessingFailure
		res.Err = fmt.Errorf("%w: flight %d: %w", ErrProcessingFailure, flight.ID, err)
		return res
	}

	res.Outcome = domain.OutcomeProcessed
	return res
}

// process вызывает действие, превращая panic в ошибку.
func (p *Poller) process(ctx context.Context, flight *domain.Flight) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.action.Process(ctx, flight)
}

// record логирует результат цикла и обновляет метрики.
func (p *Poller) record(res domain.CycleResult) {
	p.metrics.ObserveCycle(res.Window.Name, string(res.Outcome))

	logger := telemetry.WithWindow(p.logger, res.Window.Name)
	if res.FlightID != 0 {
		logger = telemetry.WithFlightID(logger, res.FlightID)
	}

	switch res.Outcome {
	case domain.OutcomeProcessed:
		logger.Info("flight claimed and processed")
	case domain.OutcomeNoCandidate:
		logger.Debug("no candidate in window")
	case domain.OutcomeClaimConflict:
		logger.Info("flight already claimed by another instance")
	case domain.OutcomeStoreFailure:
		logger.Error("claim cycle failed", "error", res.Err)
	case domain.OutcomeProcessingFailure:
		logger.Error("flight processing failed, flight stays claimed", "error", res.Err)
	}
}
