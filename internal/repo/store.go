package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/ifs/internal/domain"
)

// FlightStore — общий интерфейс FlightRepo и SQLiteFlightRepo.
type FlightStore interface {
	FindCandidate(ctx context.Context, start, end time.Time) (*domain.Flight, error)
	TryClaim(ctx context.Context, id int64, claimant string) (bool, error)
	Create(ctx context.Context, f *domain.Flight) error
	InsertBatch(ctx context.Context, flights []domain.Flight) (int, error)
	InsertBatchIfEmpty(ctx context.Context, flights []domain.Flight) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	Count(ctx context.Context) (int, error)
}

var (
	_ FlightStore = (*FlightRepo)(nil)
	_ FlightStore = (*SQLiteFlightRepo)(nil)
)

// Open открывает хранилище по имени драйвера ("postgres" или "sqlite")
// и создаёт схему. Возвращает функцию закрытия.
func Open(ctx context.Context, driver, dsn, sqlitePath string) (FlightStore, func(), error) {
	switch driver {
	case "postgres", "":
		pool, err := NewPool(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return NewFlightRepo(pool), pool.Close, nil

	case "sqlite":
		db, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		r, err := NewSQLiteFlightRepo(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return r, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
