package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/ifs/internal/domain"
	"github.com/shaiso/ifs/internal/repo"
)

// FlightStore — операции хранилища, нужные API.
type FlightStore interface {
	Create(ctx context.Context, f *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context, filter repo.FlightFilter) ([]domain.Flight, error)
	Count(ctx context.Context) (int, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store   FlightStore
	windows func() []domain.Window
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Store FlightStore

	// Windows возвращает текущие окна Poller'а (обычно Poller.Windows).
	Windows func() []domain.Window

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	windows := cfg.Windows
	if windows == nil {
		windows = domain.DefaultWindows
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   cfg.Store,
		windows: windows,
		logger:  logger,
	}
}
