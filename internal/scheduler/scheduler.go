package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/autohof/settlement-bot/internal/tasks"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler fires registered tasks on cron cadences. Each task runs at most
// once at a time; a tick arriving while the previous run of the same task is
// still in flight is skipped, not queued.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	tracker *tasks.RunTracker
	jobs    []*guardedJob
}

type guardedJob struct {
	task    Task
	logger  *slog.Logger
	tracker *tasks.RunTracker
	mu      sync.Mutex
}

// NewScheduler creates a scheduler recording run outcomes into the tracker.
func NewScheduler(logger *slog.Logger, tracker *tasks.RunTracker) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		tracker: tracker,
	}
}

// Register adds a task under the given cron expression.
func (s *Scheduler) Register(spec string, task Task) error {
	job := &guardedJob{
		task:    task,
		logger:  s.logger,
		tracker: s.tracker,
	}
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return err
	}
	s.jobs = append(s.jobs, job)
	s.logger.Info("Registered scheduled task", "task", task.Name(), "schedule", spec)
	return nil
}

// Start begins firing registered tasks. With fireNow set, every task also
// runs once immediately, which is how dry runs get exercised without waiting
// for the next tick.
func (s *Scheduler) Start(fireNow bool) {
	if fireNow {
		for _, job := range s.jobs {
			go job.Run()
		}
	}
	s.cron.Start()
	s.logger.Info("Scheduler started", "tasks", len(s.jobs))
}

// Stop halts the cron loop and waits for in-flight runs to finish, up to the
// given timeout.
func (s *Scheduler) Stop(timeout time.Duration) {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info("Scheduler stopped")
	case <-time.After(timeout):
		s.logger.Warn("Scheduler stop timed out with runs still in flight")
	}
}

// Run implements cron.Job.
func (j *guardedJob) Run() {
	if !j.mu.TryLock() {
		j.logger.Warn("Skipping tick, previous run still in flight", "task", j.task.Name())
		return
	}
	defer j.mu.Unlock()

	record := tasks.RunRecord{
		ID:        uuid.New().String(),
		Task:      j.task.Name(),
		StartedAt: time.Now().UTC(),
	}
	logger := j.logger.With("task", j.task.Name(), "run_id", record.ID)
	logger.Info("Task run started")

	err := j.task.Run(context.Background())

	record.FinishedAt = time.Now().UTC()
	if err != nil {
		record.Error = err.Error()
		logger.Error("Task run failed", "error", err, "duration", record.FinishedAt.Sub(record.StartedAt))
	} else {
		logger.Info("Task run finished", "duration", record.FinishedAt.Sub(record.StartedAt))
	}
	j.tracker.Add(record)
}
