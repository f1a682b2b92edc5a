package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/ifs/internal/telemetry"
)

// cronParser — парсер расписаний тиков.
// Поддерживает секунды (опционально) и дескрипторы вида "@every 5s".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule разбирает расписание тиков.
//
// Если spec пустой, используется фиксированный интервал.
// Интервал меньше секунды недопустим: cron округляет его до секунды.
func ParseSchedule(spec string, interval time.Duration) (cron.Schedule, error) {
	if spec != "" {
		sched, err := cronParser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %q: %v", ErrInvalidSchedule, spec, err)
		}
		return sched, nil
	}

	if interval < time.Second {
		return nil, fmt.Errorf("%w: interval must be at least 1s, got %s", ErrInvalidSchedule, interval)
	}
	return cron.Every(interval), nil
}

// Runner — таймер, вызывающий тик по расписанию.
//
// Тики одного процесса не пересекаются: если предыдущий тик ещё
// выполняется, очередной пропускается (а не ставится в очередь).
// Паника внутри тика перехватывается и не останавливает таймер.
type Runner struct {
	schedule cron.Schedule
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// NewRunner создаёт Runner.
func NewRunner(schedule cron.Schedule, logger *slog.Logger, metrics *telemetry.Metrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		schedule: schedule,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run запускает тики и блокируется до отмены ctx.
// После отмены дожидается завершения текущего тика.
func (r *Runner) Run(ctx context.Context, tick func(ctx context.Context)) {
	log := cronLogger{logger: r.logger}

	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(
			cron.Recover(log),
			skipIfStillRunning(log, r.metrics.ObserveSkip),
		),
	)
	c.Schedule(r.schedule, cron.FuncJob(func() { tick(ctx) }))

	c.Start()
	r.logger.Info("scheduler started")

	<-ctx.Done()

	<-c.Stop().Done()
	r.logger.Info("scheduler stopped")
}

// skipIfStillRunning пропускает запуск, пока предыдущий не завершился,
// и сообщает о пропуске через onSkip.
func skipIfStillRunning(logger cron.Logger, onSkip func()) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		ch := make(chan struct{}, 1)
		ch <- struct{}{}
		return cron.FuncJob(func() {
			select {
			case v := <-ch:
				defer func() { ch <- v }()
				j.Run()
			default:
				logger.Info("skip")
				onSkip()
			}
		})
	}
}

// cronLogger адаптирует slog к cron.Logger.
// Служебные сообщения cron пишутся на уровне DEBUG.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
