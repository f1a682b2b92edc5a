package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ifs/internal/domain"
	"github.com/shaiso/ifs/internal/repo"
)

func newTestServer(t *testing.T) (*httptest.Server, *repo.SQLiteFlightRepo) {
	t.Helper()

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := repo.NewSQLiteFlightRepo(context.Background(), db)
	require.NoError(t, err)

	h := NewHandler(Config{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type flightEnvelope struct {
	Data FlightResponse `json:"data"`
}

type flightListEnvelope struct {
	Data  []FlightResponse `json:"data"`
	Total int              `json:"total"`
}

func TestCreateAndGetFlight(t *testing.T) {
	srv, _ := newTestServer(t)

	dep := time.Date(2026, 10, 18, 16, 0, 0, 0, time.UTC)
	body, _ := json.Marshal(CreateFlightRequest{
		Carrier: "DL", FlightNumber: "12", Origin: "ATL", Destination: "JFK", DepartureAt: dep,
	})

	resp, err := http.Post(srv.URL+"/api/v1/flights", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	created := decode[flightEnvelope](t, resp).Data
	assert.NotZero(t, created.ID)
	assert.Equal(t, "DL12", created.Designator)
	assert.False(t, created.Claimed)

	resp, err = http.Get(srv.URL + "/api/v1/flights/" + strconv.FormatInt(created.ID, 10))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[flightEnvelope](t, resp).Data
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, dep.Equal(got.DepartureAt))
}

func TestCreateFlight_Invalid(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/flights", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// без carrier рейс не проходит валидацию
	body, _ := json.Marshal(CreateFlightRequest{FlightNumber: "1", DepartureAt: time.Now()})
	resp, err = http.Post(srv.URL+"/api/v1/flights", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetFlight_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/flights/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/flights/99")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListFlights_Filter(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	for i, n := range []string{"1", "2", "3"} {
		f := &domain.Flight{Carrier: "DL", FlightNumber: n, DepartureAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, store.Create(ctx, f))
	}
	ok, err := store.TryClaim(ctx, 2, "test")
	require.NoError(t, err)
	require.True(t, ok)

	resp, err := http.Get(srv.URL + "/api/v1/flights?claimed=false")
	require.NoError(t, err)
	list := decode[flightListEnvelope](t, resp)
	require.Len(t, list.Data, 2)
	assert.Equal(t, int64(1), list.Data[0].ID)
	assert.Equal(t, int64(3), list.Data[1].ID)
	assert.Equal(t, 3, list.Total)

	resp, err = http.Get(srv.URL + "/api/v1/flights?claimed=true")
	require.NoError(t, err)
	list = decode[flightListEnvelope](t, resp)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "test", list.Data[0].ClaimedBy)

	resp, err = http.Get(srv.URL + "/api/v1/flights?limit=x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListWindows(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/windows")
	require.NoError(t, err)

	list := decode[struct {
		Data []WindowResponse `json:"data"`
	}](t, resp)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "far", list.Data[0].Name)
	assert.Equal(t, "4h0m0s", list.Data[0].Offset)
	assert.Equal(t, time.Minute, list.Data[0].End.Sub(list.Data[0].Start))
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/windows", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "req-42")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(Recovery(logger), Logging(logger))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
