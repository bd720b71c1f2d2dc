package ports

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// JobStatus describes one registered job.
type JobStatus struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Running  bool      `json:"running"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
}

// Scheduler is a named registry of cron jobs.
type Scheduler interface {
	// Schedule registers job under name, replacing any job already using that name.
	Schedule(name, spec string, job Job) error
	Stop(name string) bool
	StopAll()
	JobNames() []string
	Status() []JobStatus
}
