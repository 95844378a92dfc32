// Package scheduler provides an in-process daily trigger for deployments
// without an external cron.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job represents a scheduled job.
type Job struct {
	Name     string
	Schedule Schedule
	Handler  func(ctx context.Context) error
	LastRun  time.Time
	NextRun  time.Time
	LastErr  error
}

// Schedule runs a job once a day at Hour:Minute in Location.
type Schedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseDaily parses "HH:MM" into a daily schedule in loc.
func ParseDaily(hhmm string, loc *time.Location) (Schedule, error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return Schedule{}, fmt.Errorf("invalid schedule time %q, want HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Schedule{}, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Schedule{}, fmt.Errorf("invalid minute in %q", hhmm)
	}
	if loc == nil {
		loc = time.UTC
	}
	return Schedule{Hour: hour, Minute: minute, Location: loc}, nil
}

// Next returns the first run time strictly after now.
func (s Schedule) Next(now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.Hour, s.Minute, 0, 0, loc)
	}
	return next
}

// Scheduler manages daily jobs. Jobs are not guarded against overlap: a
// manual trigger racing the scheduled one runs both.
type Scheduler struct {
	jobs    []*Job
	jobsMux sync.RWMutex

	tick time.Duration
	now  func() time.Time

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]*Job, 0),
		tick:   30 * time.Second,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler.
func (s *Scheduler) AddJob(job *Job) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	job.NextRun = job.Schedule.Next(s.now())
	s.jobs = append(s.jobs, job)

	log.Info().
		Str("job", job.Name).
		Time("next_run", job.NextRun).
		Msg("Job registered")
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.jobs)).Msg("Starting scheduler")

	s.wg.Add(1)
	go s.jobLoop()
}

// Stop stops the scheduler and waits for running jobs. Jobs already running
// are not cancelled: a run that has written its files still publishes them.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) jobLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRunJobs()
		}
	}
}

// checkAndRunJobs runs any jobs that are due.
func (s *Scheduler) checkAndRunJobs() {
	now := s.now()

	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	for _, job := range s.jobs {
		if !now.Before(job.NextRun) {
			s.wg.Add(1)
			go s.runJob(job)
			job.LastRun = now
			job.NextRun = job.Schedule.Next(now)

			log.Debug().
				Str("job", job.Name).
				Time("next_run", job.NextRun).
				Msg("Job scheduled for next run")
		}
	}
}

func (s *Scheduler) runJob(job *Job) {
	defer s.wg.Done()

	log.Info().Str("job", job.Name).Msg("Running job")

	err := job.Handler(context.WithoutCancel(s.ctx))

	s.jobsMux.Lock()
	job.LastErr = err
	s.jobsMux.Unlock()

	if err != nil {
		log.Error().Err(err).Str("job", job.Name).Msg("Job failed")
	} else {
		log.Info().Str("job", job.Name).Msg("Job completed")
	}
}

// RunJobNow runs a specific job immediately by name.
func (s *Scheduler) RunJobNow(name string) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	for _, job := range s.jobs {
		if job.Name == name {
			job.LastRun = s.now()
			s.wg.Add(1)
			go s.runJob(job)
			return nil
		}
	}

	return fmt.Errorf("job %q not found", name)
}

// JobStatus is a snapshot of a job's schedule.
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run"`
	NextRun time.Time `json:"next_run"`
	LastErr string    `json:"last_error,omitempty"`
}

// GetJobStatus returns the status of all jobs.
func (s *Scheduler) GetJobStatus() []JobStatus {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	status := make([]JobStatus, len(s.jobs))
	for i, job := range s.jobs {
		status[i] = JobStatus{
			Name:    job.Name,
			LastRun: job.LastRun,
			NextRun: job.NextRun,
		}
		if job.LastErr != nil {
			status[i].LastErr = job.LastErr.Error()
		}
	}
	return status
}
