package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/ifs/internal/domain"
)

// seedLockKey — ключ advisory lock для InsertBatchIfEmpty.
const seedLockKey int64 = 424243

const flightColumns = `id, claimed, claimed_at, claimed_by, carrier, flight_number,
		       origin, destination, departure_at, arrival_at, created_at`

// FlightRepo — репозиторий рейсов в PostgreSQL.
type FlightRepo struct {
	pool *pgxpool.Pool
}

// NewFlightRepo создаёт новый FlightRepo.
func NewFlightRepo(pool *pgxpool.Pool) *FlightRepo {
	return &FlightRepo{pool: pool}
}

// FindCandidate возвращает один незахваченный рейс с вылетом строго
// внутри (start, end). Порядок: самый ранний вылет, затем меньший id.
// Если кандидата нет — ErrNotFound.
func (r *FlightRepo) FindCandidate(ctx context.Context, start, end time.Time) (*domain.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM scheduled_flights
		WHERE claimed = false
		  AND departure_at > $1
		  AND departure_at < $2
		ORDER BY departure_at ASC, id ASC
		LIMIT 1
	`
	start, end = microBounds(start, end)
	return r.scanFlight(r.pool.QueryRow(ctx, query, start, end))
}

// microBounds приводит границы окна к микросекундам, точности хранения.
// start округляется вниз, end вверх: иначе рейс ровно в trunc(end),
// который строго раньше end, выпал бы из окна.
func microBounds(start, end time.Time) (time.Time, time.Time) {
	start = start.Truncate(time.Microsecond)
	if t := end.Truncate(time.Microsecond); !t.Equal(end) {
		end = t.Add(time.Microsecond)
	}
	return start, end
}

// TryClaim атомарно переводит claimed false → true.
// Возвращает true, только если строка действительно изменилась:
// из двух конкурирующих вызовов ровно один получит true.
func (r *FlightRepo) TryClaim(ctx context.Context, id int64, claimant string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE scheduled_flights
		SET claimed = true, claimed_at = NOW(), claimed_by = $2
		WHERE id = $1 AND claimed = false
	`, id, nullString(claimant))
	if err != nil {
		return false, fmt.Errorf("claim flight %d: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

// Create вставляет один рейс и заполняет ID и CreatedAt.
func (r *FlightRepo) Create(ctx context.Context, f *domain.Flight) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlight, err)
	}

	query := `
		INSERT INTO scheduled_flights (carrier, flight_number, origin, destination,
		                               departure_at, arrival_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		f.Carrier,
		f.FlightNumber,
		nullString(f.Origin),
		nullString(f.Destination),
		f.DepartureAt,
		f.ArrivalAt,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	return nil
}

// InsertBatch вставляет рейсы одной COPY-операцией в одной транзакции.
// Возвращается только после COMMIT: записи видны всем после возврата.
func (r *FlightRepo) InsertBatch(ctx context.Context, flights []domain.Flight) (int, error) {
	if err := validateBatch(flights); err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := copyFlights(ctx, tx, flights)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// InsertBatchIfEmpty вставляет рейсы, только если таблица пуста.
//
// Проверка и вставка выполняются в одной транзакции под
// pg_advisory_xact_lock, поэтому из нескольких инстансов,
// одновременно стартующих на пустой БД, вставит ровно один.
func (r *FlightRepo) InsertBatchIfEmpty(ctx context.Context, flights []domain.Flight) (bool, error) {
	if err := validateBatch(flights); err != nil {
		return false, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		return false, fmt.Errorf("seed lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scheduled_flights)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check empty: %w", err)
	}
	if exists {
		return false, tx.Commit(ctx)
	}

	if _, err := copyFlights(ctx, tx, flights); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// GetByID возвращает рейс по ID.
func (r *FlightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM scheduled_flights
		WHERE id = $1
	`
	return r.scanFlight(r.pool.QueryRow(ctx, query, id))
}

// List возвращает рейсы с фильтрацией, по времени вылета.
func (r *FlightRepo) List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM scheduled_flights
		WHERE ($1::boolean IS NULL OR claimed = $1)
		ORDER BY departure_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.Claimed, filter.limit(), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	var flights []domain.Flight
	for rows.Next() {
		f, err := r.scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

// Count возвращает количество рейсов.
func (r *FlightRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM scheduled_flights`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

// --- Helpers ---

// FlightFilter — параметры фильтрации рейсов.
type FlightFilter struct {
	Claimed *bool
	Limit   int
	Offset  int
}

func (f FlightFilter) limit() int {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}

func validateBatch(flights []domain.Flight) error {
	for i := range flights {
		if err := flights[i].Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFlight, err)
		}
	}
	return nil
}

func copyFlights(ctx context.Context, tx pgx.Tx, flights []domain.Flight) (int, error) {
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"scheduled_flights"},
		[]string{"carrier", "flight_number", "origin", "destination", "departure_at", "arrival_at"},
		pgx.CopyFromSlice(len(flights), func(i int) ([]any, error) {
			f := &flights[i]
			return []any{
				f.Carrier,
				f.FlightNumber,
				nullString(f.Origin),
				nullString(f.Destination),
				f.DepartureAt,
				f.ArrivalAt,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy flights: %w", err)
	}
	return int(n), nil
}

func (r *FlightRepo) scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	var claimedBy, origin, destination *string

	err := row.Scan(
		&f.ID,
		&f.Claimed,
		&f.ClaimedAt,
		&claimedBy,
		&f.Carrier,
		&f.FlightNumber,
		&origin,
		&destination,
		&f.DepartureAt,
		&f.ArrivalAt,
		&f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flight: %w", err)
	}

	f.ClaimedBy = deref(claimedBy)
	f.Origin = deref(origin)
	f.Destination = deref(destination)

	return &f, nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
