package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shaiso/ifs/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteFlightRepo — репозиторий рейсов поверх SQLite.
// Используется для локального запуска без PostgreSQL и в тестах.
//
// Время хранится как INTEGER (unix-микросекунды), чтобы сравнения
// в окне были числовыми и не зависели от формата строки.
type SQLiteFlightRepo struct {
	db *sql.DB
}

// OpenSQLite открывает файл БД. Транзакции берут write-lock сразу
// (_txlock=immediate), поэтому проверка пустоты и вставка при seed
// не пересекаются между процессами.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewSQLiteFlightRepo создаёт репозиторий и схему.
func NewSQLiteFlightRepo(ctx context.Context, db *sql.DB) (*SQLiteFlightRepo, error) {
	r := &SQLiteFlightRepo{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteFlightRepo) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scheduled_flights (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			claimed       INTEGER NOT NULL DEFAULT 0,
			claimed_at    INTEGER,
			claimed_by    TEXT,
			carrier       TEXT    NOT NULL,
			flight_number TEXT    NOT NULL,
			origin        TEXT,
			destination   TEXT,
			departure_at  INTEGER NOT NULL,
			arrival_at    INTEGER,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS scheduled_flights_unclaimed_idx
			ON scheduled_flights (departure_at, id)
			WHERE claimed = 0`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// FindCandidate — см. FlightRepo.FindCandidate.
func (r *SQLiteFlightRepo) FindCandidate(ctx context.Context, start, end time.Time) (*domain.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM scheduled_flights
		WHERE claimed = 0
		  AND departure_at > ?
		  AND departure_at < ?
		ORDER BY departure_at ASC, id ASC
		LIMIT 1
	`
	start, end = microBounds(start, end)
	return scanSQLiteFlight(r.db.QueryRowContext(ctx, query, start.UnixMicro(), end.UnixMicro()))
}

// TryClaim — см. FlightRepo.TryClaim.
func (r *SQLiteFlightRepo) TryClaim(ctx context.Context, id int64, claimant string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_flights
		SET claimed = 1, claimed_at = ?, claimed_by = ?
		WHERE id = ? AND claimed = 0
	`, time.Now().UnixMicro(), nullString(claimant), id)
	if err != nil {
		return false, fmt.Errorf("claim flight %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim flight %d: rows affected: %w", id, err)
	}
	return n == 1, nil
}

// Create вставляет один рейс и заполняет ID и CreatedAt.
func (r *SQLiteFlightRepo) Create(ctx context.Context, f *domain.Flight) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlight, err)
	}

	f.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	result, err := r.db.ExecContext(ctx, insertSQLiteFlight, sqliteFlightArgs(f)...)
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	if f.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("insert flight: last id: %w", err)
	}
	return nil
}

// InsertBatch вставляет рейсы в одной транзакции.
func (r *SQLiteFlightRepo) InsertBatch(ctx context.Context, flights []domain.Flight) (int, error) {
	if err := validateBatch(flights); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertSQLiteBatch(ctx, tx, flights); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(flights), nil
}

// InsertBatchIfEmpty вставляет рейсы, только если таблица пуста.
func (r *SQLiteFlightRepo) InsertBatchIfEmpty(ctx context.Context, flights []domain.Flight) (bool, error) {
	if err := validateBatch(flights); err != nil {
		return false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM scheduled_flights)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check empty: %w", err)
	}
	if exists {
		return false, tx.Commit()
	}

	if err := insertSQLiteBatch(ctx, tx, flights); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// GetByID возвращает рейс по ID.
func (r *SQLiteFlightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM scheduled_flights WHERE id = ?`
	return scanSQLiteFlight(r.db.QueryRowContext(ctx, query, id))
}

// List возвращает рейсы с фильтрацией, по времени вылета.
func (r *SQLiteFlightRepo) List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query := `
		SELECT ` + flightColumns + `
		FROM scheduled_flights
		WHERE (? IS NULL OR claimed = ?)
		ORDER BY departure_at ASC, id ASC
		LIMIT ? OFFSET ?
	`
	var claimed any
	if filter.Claimed != nil {
		claimed = boolToInt(*filter.Claimed)
	}

	rows, err := r.db.QueryContext(ctx, query, claimed, claimed, filter.limit(), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var flights []domain.Flight
	for rows.Next() {
		f, err := scanSQLiteFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

// Count возвращает количество рейсов.
func (r *SQLiteFlightRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scheduled_flights`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

const insertSQLiteFlight = `
	INSERT INTO scheduled_flights (carrier, flight_number, origin, destination,
	                               departure_at, arrival_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

func insertSQLiteBatch(ctx context.Context, tx *sql.Tx, flights []domain.Flight) error {
	stmt, err := tx.PrepareContext(ctx, insertSQLiteFlight)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for i := range flights {
		f := flights[i]
		f.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, sqliteFlightArgs(&f)...); err != nil {
			return fmt.Errorf("insert flight %s: %w", f.Designator(), err)
		}
	}
	return nil
}

func sqliteFlightArgs(f *domain.Flight) []any {
	return []any{
		f.Carrier,
		f.FlightNumber,
		nullString(f.Origin),
		nullString(f.Destination),
		f.DepartureAt.UnixMicro(),
		nullMicros(f.ArrivalAt),
		f.CreatedAt.UnixMicro(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFlight(row rowScanner) (*domain.Flight, error) {
	var f domain.Flight
	var claimed int
	var claimedAt, arrivalAt sql.NullInt64
	var claimedBy, origin, destination sql.NullString
	var departureAt, createdAt int64

	err := row.Scan(
		&f.ID,
		&claimed,
		&claimedAt,
		&claimedBy,
		&f.Carrier,
		&f.FlightNumber,
		&origin,
		&destination,
		&departureAt,
		&arrivalAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flight: %w", err)
	}

	f.Claimed = claimed != 0
	f.ClaimedAt = fromMicros(claimedAt)
	f.ClaimedBy = claimedBy.String
	f.Origin = origin.String
	f.Destination = destination.String
	f.DepartureAt = time.UnixMicro(departureAt).UTC()
	f.ArrivalAt = fromMicros(arrivalAt)
	f.CreatedAt = time.UnixMicro(createdAt).UTC()

	return &f, nil
}

func nullMicros(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMicro()
}

func fromMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMicro(v.Int64).UTC()
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
