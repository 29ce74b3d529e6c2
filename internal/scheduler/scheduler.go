// Package scheduler runs a small fixed set of periodic jobs, each on its
// own ticker with isolated failure handling.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs its jobs until the context is cancelled. A job's error or
// panic is logged and never stops the scheduler or its sibling jobs.
type Scheduler struct {
	jobs []Job
}

// New builds a scheduler over the given jobs.
func New(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs}
}

// Start runs every job immediately and then on its interval, blocking until
// ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runLoop(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	runOnce(ctx, job)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, job)
		}
	}
}

func runOnce(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: job %s panicked: %v", job.Name, r)
		}
	}()

	if err := job.Run(ctx); err != nil {
		log.Printf("scheduler: job %s: %v", job.Name, err)
	}
}
