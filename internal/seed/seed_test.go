package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ifs/internal/domain"
	"github.com/shaiso/ifs/internal/repo"
)

func newSQLiteRepo(t *testing.T) *repo.SQLiteFlightRepo {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "ifs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r, err := repo.NewSQLiteFlightRepo(context.Background(), db)
	require.NoError(t, err)
	return r
}

func TestDemoFlights(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	flights := DemoFlights(now)

	require.Len(t, flights, 14)
	for i, f := range flights {
		assert.NoError(t, f.Validate())
		assert.Equal(t, "DL", f.Carrier)
		assert.False(t, f.Claimed, "flight %d", i)
	}
	// DL2 сразу попадает в окно +40m
	near := domain.Window{Name: "near", Offset: 40 * time.Minute, Tolerance: time.Minute}
	assert.True(t, near.Contains(flights[1].DepartureAt, now))
}

func TestSeedIfEmpty_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteRepo(t)
	s := New(Config{Store: store})

	inserted, err := s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, inserted)

	first, err := store.List(ctx, repo.FlightFilter{})
	require.NoError(t, err)

	inserted, err = s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, inserted)

	second, err := store.List(ctx, repo.FlightFilter{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 14)
}

func TestSeedIfEmpty_SkipsPopulatedTable(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteRepo(t)

	require.NoError(t, store.Create(ctx, &domain.Flight{
		Carrier:      "UA",
		FlightNumber: "100",
		DepartureAt:  time.Now().Add(time.Hour),
	}))

	inserted, err := New(Config{Store: store}).SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
