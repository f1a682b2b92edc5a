package scheduler

import "errors"

// Ошибки планировщика.
var (
	// ErrStoreFailure — ошибка хранилища при поиске или захвате рейса.
	ErrStoreFailure = errors.New("store failure")

	// ErrProcessingFailure — обработка рейса завершилась ошибкой после захвата.
	ErrProcessingFailure = errors.New("processing failure")

	// ErrInvalidWindow — окно упреждения сконфигурировано некорректно.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInvalidConfig — в Config не задано хранилище или действие.
	ErrInvalidConfig = errors.New("invalid poller config")

	// ErrInvalidSchedule — расписание тиков не распознано.
	ErrInvalidSchedule = errors.New("invalid schedule")
)
