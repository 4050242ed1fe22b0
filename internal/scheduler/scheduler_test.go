package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New("Mars/Olympus_Mons", time.Minute)
	assert.Error(t, err)
}

func TestAddJob(t *testing.T) {
	s, err := New("UTC", time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.AddJob("scrape", "0 */6 * * *", func(context.Context) error { return nil }))
	assert.Error(t, s.AddJob("scrape", "@hourly", func(context.Context) error { return nil }), "duplicate name")
	assert.Error(t, s.AddJob("bad", "not a schedule", func(context.Context) error { return nil }))

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "scrape", jobs[0].Name)
	assert.Equal(t, "0 */6 * * *", jobs[0].Schedule)

	s.RemoveJob("scrape")
	assert.Empty(t, s.ListJobs())
}

func TestRunNow_AppliesTimeout(t *testing.T) {
	s, err := New("UTC", 20*time.Millisecond)
	require.NoError(t, err)

	err = s.RunNow("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunNow_PropagatesError(t *testing.T) {
	s, err := New("", 0)
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.RunNow("job", func(context.Context) error { return boom }), boom)
}

func TestScheduledJobRunsAndStopWaits(t *testing.T) {
	s, err := New("UTC", time.Minute)
	require.NoError(t, err)

	var runs atomic.Int32
	started := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	s.Stop(context.Background())
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestStop_CancelsRunningJobsAfterDeadline(t *testing.T) {
	s, err := New("UTC", time.Minute)
	require.NoError(t, err)

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, s.AddJob("long", "@every 1s", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s.Stop(ctx)
	assert.True(t, cancelled.Load())
}
