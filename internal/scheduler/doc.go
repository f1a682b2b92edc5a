// Package scheduler реализует цикл захвата рейсов.
//
// Poller на каждом тике проходит по окнам упреждения и для каждого
// окна ищет незахваченный рейс, атомарно захватывает его и передаёт
// в обработку.
//
// Структура:
//   - scheduler.go — Poller (Tick, runCycle, bootstrap)
//   - cron.go      — Runner: таймер на robfig/cron с пропуском пересекающихся тиков
//
// Использование:
//
//	poller, err := scheduler.New(scheduler.Config{
//	    Store:    flightRepo,
//	    Action:   action.NewLog(logger),
//	    Seeder:   seeder,      // опционально
//	    Windows:  domain.DefaultWindows(),
//	    Claimant: instanceID,
//	    Logger:   logger,
//	})
//
//	sched, _ := scheduler.ParseSchedule("", 5*time.Second)
//	scheduler.NewRunner(sched, logger, metrics).Run(ctx, func(ctx context.Context) {
//	    poller.Tick(ctx)
//	})
//
// Несколько инстансов:
//
// Leader election не нужен. Каждый инстанс может прочитать одного
// и того же кандидата, но UPDATE ... WHERE claimed = false
// пропустит только один захват. Проигравший получает CLAIM_CONFLICT.
package scheduler
