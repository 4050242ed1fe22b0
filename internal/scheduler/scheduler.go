// Package scheduler runs periodic jobs such as the recurring scrape.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tgscraper/internal/observability"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a job run when none is configured.
const DefaultTimeout = 30 * time.Minute

// Job represents a scheduled task
type Job func(ctx context.Context) error

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name     string
	Schedule string
	NextRun  time.Time
	LastRun  time.Time
}

// Scheduler manages periodic tasks. A job whose previous run is still going
// is skipped rather than queued.
type Scheduler struct {
	cron     *cron.Cron
	timezone *time.Location
	timeout  time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	jobs      map[string]cron.EntryID
	schedules map[string]string
}

// New creates a new scheduler with the given timezone and per-run timeout
func New(timezone string, timeout time.Duration) (*Scheduler, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      c,
		timezone:  loc,
		timeout:   timeout,
		baseCtx:   ctx,
		cancel:    cancel,
		jobs:      make(map[string]cron.EntryID),
		schedules: make(map[string]string),
	}, nil
}

// AddJob adds a job with a standard five-field cron schedule or a
// descriptor such as "@every 6h".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(name, job); err != nil {
			log.Printf("[scheduler] Job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.schedules[name] = schedule
	log.Printf("[scheduler] Added job: %s (schedule: %s)", name, schedule)
	return nil
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	defer cancel()
	ctx = observability.WithCorrelationID(ctx, uuid.NewString())

	fields := map[string]interface{}{"job": name}
	observability.LogAsyncOperationStart(ctx, "scheduled_job", fields)
	log.Printf("[scheduler] Starting job: %s", name)
	start := time.Now()

	if err := job(ctx); err != nil {
		observability.LogAsyncOperationError(ctx, "scheduled_job", err, fields)
		return err
	}

	fields["duration_ms"] = time.Since(start).Milliseconds()
	observability.LogAsyncOperationEnd(ctx, "scheduled_job", fields)
	log.Printf("[scheduler] Job %s completed in %v", name, time.Since(start))
	return nil
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		delete(s.schedules, name)
		log.Printf("[scheduler] Removed job: %s", name)
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	log.Println("[scheduler] Starting scheduler")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs. When ctx expires first,
// running jobs are cancelled and Stop still waits for them to return.
func (s *Scheduler) Stop(ctx context.Context) {
	log.Println("[scheduler] Stopping scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Println("[scheduler] Cancelling running jobs")
		s.cancel()
		<-done.Done()
	}
	s.cancel()
}

// RunNow immediately executes a job under the scheduler's timeout.
func (s *Scheduler) RunNow(name string, job Job) error {
	log.Printf("[scheduler] Running job now: %s", name)
	return s.run(name, job)
}

// ListJobs returns info about scheduled jobs
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	infos := make([]JobInfo, 0, len(entries))
	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:     name,
					Schedule: s.schedules[name],
					NextRun:  entry.Next,
					LastRun:  entry.Prev,
				})
				break
			}
		}
	}
	return infos
}
