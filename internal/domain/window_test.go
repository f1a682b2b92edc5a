package domain

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Bounds(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := Window{Name: "near", Offset: 40 * time.Minute, Tolerance: time.Minute}

	start, end := w.Bounds(now)

	assert.Equal(t, now.Add(39*time.Minute), start)
	assert.Equal(t, now.Add(40*time.Minute), end)
}

func TestWindow_Contains_Edges(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := Window{Name: "near", Offset: 40 * time.Minute, Tolerance: time.Minute}
	start, end := w.Bounds(now)

	// Границы исключены с обеих сторон
	assert.False(t, w.Contains(start, now))
	assert.False(t, w.Contains(end, now))
	assert.True(t, w.Contains(start.Add(time.Nanosecond), now))
	assert.True(t, w.Contains(end.Add(-30*time.Second), now))
	assert.False(t, w.Contains(end.Add(time.Second), now))
}

func TestWindow_Validate(t *testing.T) {
	require.NoError(t, Window{Name: "far", Offset: 4 * time.Hour, Tolerance: time.Minute}.Validate())

	assert.Error(t, Window{Offset: time.Hour, Tolerance: time.Minute}.Validate(), "empty name")
	assert.Error(t, Window{Name: "x", Offset: 0, Tolerance: time.Minute}.Validate(), "zero offset")
	assert.Error(t, Window{Name: "x", Offset: time.Hour}.Validate(), "zero tolerance")
	assert.Error(t, Window{Name: "x", Offset: time.Minute, Tolerance: time.Hour}.Validate(), "tolerance > offset")
}

func TestDefaultWindows(t *testing.T) {
	windows := DefaultWindows()
	require.Len(t, windows, 2)
	for _, w := range windows {
		assert.NoError(t, w.Validate())
	}
	assert.Equal(t, 4*time.Hour, windows[0].Offset)
	assert.Equal(t, 40*time.Minute, windows[1].Offset)
}

// Property: Contains(t) ⇔ start < t < end для любых окна и смещения.
func TestWindow_ContainsMatchesBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	properties.Property("Contains is the open interval of Bounds", prop.ForAll(
		func(offsetSec, tolSec, deltaSec int64) bool {
			if tolSec > offsetSec {
				tolSec = offsetSec
			}
			w := Window{
				Name:      "p",
				Offset:    time.Duration(offsetSec) * time.Second,
				Tolerance: time.Duration(tolSec) * time.Second,
			}
			start, end := w.Bounds(now)
			ts := now.Add(time.Duration(deltaSec) * time.Second)

			expected := ts.After(start) && ts.Before(end)
			return w.Contains(ts, now) == expected
		},
		gen.Int64Range(1, 24*3600),
		gen.Int64Range(1, 3600),
		gen.Int64Range(0, 25*3600),
	))

	properties.TestingRun(t)
}
