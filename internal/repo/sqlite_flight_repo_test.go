package repo

import (
	"context"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ifs/internal/domain"
)

var baseTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestSQLiteRepo(t *testing.T) *SQLiteFlightRepo {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "flights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r, err := NewSQLiteFlightRepo(context.Background(), db)
	require.NoError(t, err)
	return r
}

func flightAt(number string, dep time.Time) domain.Flight {
	return domain.Flight{Carrier: "DL", FlightNumber: number, Origin: "ATL", Destination: "JFK", DepartureAt: dep}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)

	arr := baseTime.Add(3 * time.Hour)
	f := flightAt("1", baseTime.Add(time.Hour))
	f.ArrivalAt = &arr
	require.NoError(t, r.Create(ctx, &f))
	require.NotZero(t, f.ID)

	got, err := r.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "DL", got.Carrier)
	assert.Equal(t, "ATL", got.Origin)
	assert.True(t, got.DepartureAt.Equal(f.DepartureAt))
	require.NotNil(t, got.ArrivalAt)
	assert.True(t, got.ArrivalAt.Equal(arr))
	assert.False(t, got.Claimed)
	assert.Nil(t, got.ClaimedAt)

	_, err = r.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_CreateRejectsInvalid(t *testing.T) {
	r := newTestSQLiteRepo(t)
	err := r.Create(context.Background(), &domain.Flight{Carrier: "DL"})
	assert.ErrorIs(t, err, ErrInvalidFlight)

	_, err = r.InsertBatch(context.Background(), []domain.Flight{flightAt("1", baseTime), {Carrier: "DL"}})
	assert.ErrorIs(t, err, ErrInvalidFlight)

	n, err := r.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "invalid batch must not be partially inserted")
}

func TestSQLite_FindCandidate(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)

	start := baseTime.Add(39 * time.Minute)
	end := baseTime.Add(40 * time.Minute)

	_, err := r.InsertBatch(ctx, []domain.Flight{
		flightAt("edge-start", start),
		flightAt("edge-end", end),
		flightAt("inside-late", end.Add(-10*time.Second)),
		flightAt("inside-early", start.Add(10*time.Second)),
		flightAt("outside", end.Add(time.Minute)),
	})
	require.NoError(t, err)

	got, err := r.FindCandidate(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "inside-early", got.FlightNumber)

	ok, err := r.TryClaim(ctx, got.ID, "node-a")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = r.FindCandidate(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "inside-late", got.FlightNumber)

	ok, err = r.TryClaim(ctx, got.ID, "node-a")
	require.NoError(t, err)
	require.True(t, ok)

	// Граничные рейсы не попадают в окно
	_, err = r.FindCandidate(ctx, start, end)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_FindCandidate_SubMicrosecondBounds(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)

	dep := baseTime.Add(40 * time.Minute)
	_, err := r.InsertBatch(ctx, []domain.Flight{flightAt("1", dep)})
	require.NoError(t, err)

	// dep < end на полмикросекунды: рейс внутри окна
	got, err := r.FindCandidate(ctx, dep.Add(-time.Minute), dep.Add(500*time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, "1", got.FlightNumber)

	// dep < start на полмикросекунды: рейс вне окна
	_, err = r.FindCandidate(ctx, dep.Add(500*time.Nanosecond), dep.Add(time.Minute))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMicroBounds(t *testing.T) {
	start, end := microBounds(baseTime.Add(1500*time.Nanosecond), baseTime.Add(1500*time.Nanosecond))
	assert.Equal(t, baseTime.Add(time.Microsecond), start)
	assert.Equal(t, baseTime.Add(2*time.Microsecond), end)

	start, end = microBounds(baseTime, baseTime.Add(time.Minute))
	assert.Equal(t, baseTime, start)
	assert.Equal(t, baseTime.Add(time.Minute), end)
}

func TestSQLite_FindCandidate_TieBreakByID(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)
	dep := baseTime.Add(40*time.Minute - 30*time.Second)

	_, err := r.InsertBatch(ctx, []domain.Flight{flightAt("a", dep), flightAt("b", dep)})
	require.NoError(t, err)

	got, err := r.FindCandidate(ctx, baseTime.Add(39*time.Minute), baseTime.Add(40*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "a", got.FlightNumber)
}

func TestSQLite_TryClaim_ExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)

	f := flightAt("3", baseTime.Add(40*time.Minute))
	require.NoError(t, r.Create(ctx, &f))

	const N = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, losses := 0, 0

	for i := 0; i < N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.TryClaim(ctx, f.ID, "node")
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				wins++
			} else {
				losses++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, N-1, losses)

	got, err := r.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.Claimed)
	assert.Equal(t, "node", got.ClaimedBy)
	assert.NotNil(t, got.ClaimedAt)
}

func TestSQLite_TryClaim_UnknownID(t *testing.T) {
	ok, err := newTestSQLiteRepo(t).TryClaim(context.Background(), 42, "node")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_InsertBatchIfEmpty(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)
	batch := []domain.Flight{flightAt("1", baseTime), flightAt("2", baseTime.Add(time.Minute))}

	inserted, err := r.InsertBatchIfEmpty(ctx, batch)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = r.InsertBatchIfEmpty(ctx, batch)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLite_ListFilter(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)

	_, err := r.InsertBatch(ctx, []domain.Flight{
		flightAt("1", baseTime.Add(time.Hour)),
		flightAt("2", baseTime.Add(2*time.Hour)),
		flightAt("3", baseTime.Add(3*time.Hour)),
	})
	require.NoError(t, err)

	all, err := r.List(ctx, FlightFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].FlightNumber)

	_, err = r.TryClaim(ctx, all[1].ID, "node")
	require.NoError(t, err)

	claimed, unclaimed := true, false
	onlyClaimed, err := r.List(ctx, FlightFilter{Claimed: &claimed})
	require.NoError(t, err)
	require.Len(t, onlyClaimed, 1)
	assert.Equal(t, "2", onlyClaimed[0].FlightNumber)

	onlyUnclaimed, err := r.List(ctx, FlightFilter{Claimed: &unclaimed})
	require.NoError(t, err)
	assert.Len(t, onlyUnclaimed, 2)

	page, err := r.List(ctx, FlightFilter{Limit: 1, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "3", page[0].FlightNumber)
}

// Property: FindCandidate никогда не возвращает рейс вне (start, end)
// или уже захваченный, и возвращает ErrNotFound только если подходящих нет.
func TestSQLite_FindCandidate_WindowProperty(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepo(t)

	rng := rand.New(rand.NewSource(42))
	flights := make([]domain.Flight, 300)
	for i := range flights {
		offset := time.Duration(rng.Intn(5*3600)) * time.Second
		flights[i] = flightAt("P", baseTime.Add(offset))
	}
	_, err := r.InsertBatch(ctx, flights)
	require.NoError(t, err)

	all, err := r.List(ctx, FlightFilter{Limit: 1000})
	require.NoError(t, err)
	for i := range all {
		if i%3 == 0 {
			ok, err := r.TryClaim(ctx, all[i].ID, "node")
			require.NoError(t, err)
			require.True(t, ok)
			all[i].Claimed = true
		}
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("candidate lies strictly inside the window and is unclaimed", prop.ForAll(
		func(startSec, widthSec int64) bool {
			start := baseTime.Add(time.Duration(startSec) * time.Second)
			end := start.Add(time.Duration(widthSec) * time.Second)

			got, err := r.FindCandidate(ctx, start, end)
			if err == ErrNotFound {
				for _, f := range all {
					if !f.Claimed && f.DepartureAt.After(start) && f.DepartureAt.Before(end) {
						return false
					}
				}
				return true
			}
			if err != nil {
				return false
			}
			return !got.Claimed && got.DepartureAt.After(start) && got.DepartureAt.Before(end)
		},
		gen.Int64Range(-600, 5*3600),
		gen.Int64Range(1, 600),
	))

	properties.TestingRun(t)
}
