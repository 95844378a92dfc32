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

var taipei = time.FixedZone("CST", 8*60*60)

func TestParseDaily(t *testing.T) {
	s, err := ParseDaily("08:30", taipei)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Hour)
	assert.Equal(t, 30, s.Minute)

	for _, bad := range []string{"8", "24:00", "07:60", "ab:cd", ""} {
		_, err := ParseDaily(bad, taipei)
		assert.Error(t, err, bad)
	}
}

func TestScheduleNextUsesLocation(t *testing.T) {
	s := Schedule{Hour: 8, Minute: 0, Location: taipei}

	// 2026-10-14 23:00 UTC is 2026-10-15 07:00 in Taipei.
	next := s.Next(time.Date(2026, 10, 14, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), next.UTC())

	// Exactly at the run time schedules the following day.
	next = s.Next(time.Date(2026, 10, 15, 8, 0, 0, 0, taipei))
	assert.Equal(t, time.Date(2026, 10, 16, 8, 0, 0, 0, taipei), next)
}

func TestCheckAndRunJobsRunsDueJobsOnce(t *testing.T) {
	s := NewScheduler()
	clock := time.Date(2026, 10, 15, 7, 59, 0, 0, taipei)
	s.now = func() time.Time { return clock }

	var runs atomic.Int32
	s.AddJob(&Job{
		Name:     "daily-update",
		Schedule: Schedule{Hour: 8, Location: taipei},
		Handler: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.checkAndRunJobs()
	s.wg.Wait()
	assert.Equal(t, int32(0), runs.Load(), "not yet due")

	clock = clock.Add(time.Minute)
	s.checkAndRunJobs()
	s.checkAndRunJobs()
	s.wg.Wait()
	assert.Equal(t, int32(1), runs.Load())

	status := s.GetJobStatus()
	require.Len(t, status, 1)
	assert.Equal(t, time.Date(2026, 10, 16, 8, 0, 0, 0, taipei), status[0].NextRun)
}

func TestRunJobNow(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{})
	s.AddJob(&Job{
		Name:     "daily-update",
		Schedule: Schedule{Hour: 8},
		Handler: func(ctx context.Context) error {
			close(done)
			return errors.New("push rejected")
		},
	})

	require.NoError(t, s.RunJobNow("daily-update"))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	s.Stop()

	assert.Equal(t, "push rejected", s.GetJobStatus()[0].LastErr)
	assert.Error(t, s.RunJobNow("weekly-digest"))
}

func TestStopWaitsForRunningJobWithoutCancelling(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{})
	release := make(chan struct{})
	seen := make(chan error, 1)
	s.AddJob(&Job{
		Name:     "daily-update",
		Schedule: Schedule{Hour: 8},
		Handler: func(ctx context.Context) error {
			close(started)
			<-release
			seen <- ctx.Err()
			return nil
		},
	})

	require.NoError(t, s.RunJobNow("daily-update"))
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	require.Eventually(t, func() bool { return s.ctx.Err() != nil }, 5*time.Second, 10*time.Millisecond)
	select {
	case <-stopped:
		t.Fatal("Stop returned while a job was running")
	default:
	}

	close(release)
	assert.NoError(t, <-seen, "running job keeps a live context")

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the job finished")
	}
}
