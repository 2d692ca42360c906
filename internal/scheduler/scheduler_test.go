package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/autohof/settlement-bot/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	name    string
	err     error
	block   chan struct{}
	started atomic.Int32
}

func (f *fakeTask) Name() string { return f.name }

func (f *fakeTask) Run(ctx context.Context) error {
	f.started.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestScheduler_RegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(testLogger(), tasks.NewRunTracker(10))
	err := s.Register("not a cron spec", &fakeTask{name: "bad"})
	assert.Error(t, err)
}

func TestGuardedJob_RecordsOutcome(t *testing.T) {
	tracker := tasks.NewRunTracker(10)
	job := &guardedJob{
		task:    &fakeTask{name: "failing", err: errors.New("boom")},
		logger:  testLogger(),
		tracker: tracker,
	}

	job.Run()

	recent := tracker.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "failing", recent[0].Task)
	assert.Equal(t, "boom", recent[0].Error)
	assert.NotEmpty(t, recent[0].ID)
	assert.False(t, recent[0].FinishedAt.Before(recent[0].StartedAt))
}

func TestGuardedJob_SkipsOverlappingRun(t *testing.T) {
	tracker := tasks.NewRunTracker(10)
	task := &fakeTask{name: "slow", block: make(chan struct{})}
	job := &guardedJob{
		task:    task,
		logger:  testLogger(),
		tracker: tracker,
	}

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return task.started.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// A second tick while the first run holds the lock must be dropped
	job.Run()
	assert.Equal(t, int32(1), task.started.Load())

	close(task.block)
	<-done
	require.Len(t, tracker.Recent(), 1)
}

func TestScheduler_FireNowRunsTasksOnce(t *testing.T) {
	tracker := tasks.NewRunTracker(10)
	s := NewScheduler(testLogger(), tracker)

	task := &fakeTask{name: "immediate"}
	require.NoError(t, s.Register("0 3 * * *", task))

	s.Start(true)
	defer s.Stop(time.Second)

	require.Eventually(t, func() bool {
		return task.started.Load() == 1
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(tracker.Recent()) == 1
	}, time.Second, 5*time.Millisecond)
}
