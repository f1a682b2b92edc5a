package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ifs/internal/domain"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "open.db")

	store, closeFn, err := Open(ctx, "sqlite", "", path)
	require.NoError(t, err)

	f := &domain.Flight{Carrier: "DL", FlightNumber: "1", DepartureAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Create(ctx, f))
	closeFn()

	// Повторное открытие видит те же данные, схема не пересоздаётся.
	store, closeFn, err = Open(ctx, "sqlite", "", path)
	require.NoError(t, err)
	defer closeFn()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), "mysql", "", "")
	assert.ErrorContains(t, err, "unknown store driver")
}
