package scheduler

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/ifs/internal/telemetry"
)

func TestParseSchedule(t *testing.T) {
	sched, err := ParseSchedule("", 5*time.Second)
	require.NoError(t, err)
	from := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(5*time.Second), sched.Next(from))

	sched, err = ParseSchedule("*/10 * * * * *", 0)
	require.NoError(t, err)
	assert.Equal(t, from.Add(10*time.Second), sched.Next(from))

	sched, err = ParseSchedule("@every 10s", 0)
	require.NoError(t, err)
	assert.Equal(t, from.Add(10*time.Second), sched.Next(from))

	_, err = ParseSchedule("not a cron", 0)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = ParseSchedule("", 500*time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestSkipIfStillRunning(t *testing.T) {
	var skipped atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	var runs atomic.Int32
	job := skipIfStillRunning(cron.DiscardLogger, func() { skipped.Add(1) })(cron.FuncJob(func() {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
	}))

	go job.Run()
	<-started

	job.Run() // первый ещё выполняется
	assert.Equal(t, int32(1), skipped.Load())

	close(release)
	require.Eventually(t, func() bool {
		job.Run()
		return runs.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRunner_TicksUntilCancelled(t *testing.T) {
	sched, err := ParseSchedule("", time.Second)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, "text", slog.LevelInfo)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32

	done := make(chan struct{})
	go func() {
		NewRunner(sched, logger, metrics).Run(ctx, func(context.Context) {
			if ticks.Add(1) == 1 {
				panic("tick failure must not stop the timer")
			}
		})
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Contains(t, buf.String(), "scheduler stopped")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.TicksSkipped))
}
