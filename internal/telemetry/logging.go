package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// LogLevel определяет уровень логирования из переменной окружения.
// Возможные значения: DEBUG, INFO, WARN, ERROR
// По умолчанию: INFO
func LogLevel() slog.Level {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер.
//
// Формат вывода определяется переменной LOG_FORMAT:
//   - "json" (по умолчанию) — JSON формат для production
//   - "text" — человекочитаемый формат для разработки
//
// Если задан LOG_FILE, логи дополнительно пишутся в файл в JSON.
// Возвращает функцию закрытия файла.
func SetupLogger() (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{
		Level:     LogLevel(),
		AddSource: LogLevel() == slog.LevelDebug,
	}

	handler := newHandler(os.Stdout, os.Getenv("LOG_FORMAT"), opts)
	cleanup := func() error { return nil }

	if path := os.Getenv("LOG_FILE"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.New(handler).Error("failed to open log file, using stdout only", "file", path, "error", err)
		} else {
			handler = slogmulti.Fanout(handler, slog.NewJSONHandler(file, opts))
			cleanup = file.Close
		}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, cleanup
}

// NewLogger создаёт логгер с выводом в w (для тестов и CLI).
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	return slog.New(newHandler(w, format, &slog.HandlerOptions{Level: level}))
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger — ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithWindow возвращает логгер с добавленным именем окна.
func WithWindow(logger *slog.Logger, window string) *slog.Logger {
	return logger.With("window", window)
}

// WithFlightID возвращает логгер с добавленным flight_id.
func WithFlightID(logger *slog.Logger, flightID int64) *slog.Logger {
	return logger.With("flight_id", flightID)
}
