// Package scheduler runs named jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/ports"
)

type job struct {
	id      cron.EntryID
	spec    string
	running atomic.Bool
}

// CronScheduler is a registry of named cron jobs sharing one cron runner.
type CronScheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   map[string]*job
	ctx    context.Context
	cancel context.CancelFunc
	logger *logrus.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// New creates a scheduler evaluating specs in loc (UTC when nil). Specs use the
// standard five field syntax.
func New(loc *time.Location, logger *logrus.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Start begins running scheduled jobs in the background.
func (s *CronScheduler) Start() { s.cron.Start() }

// Schedule registers fn under name, replacing any job with the same name.
func (s *CronScheduler) Schedule(name, spec string, fn ports.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		s.log().WithField("job", name).Warn("cron job already exists, replacing it")
		s.cron.Remove(old.id)
		delete(s.jobs, name)
	}

	j := &job{spec: spec}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, j, fn) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	j.id = id
	s.jobs[name] = j
	s.log().WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("cron job scheduled")
	return nil
}

func (s *CronScheduler) run(name string, j *job, fn ports.Job) {
	log := s.log().WithField("job", name)
	if !j.running.CompareAndSwap(false, true) {
		log.Warn("previous run still in progress, skipping")
		return
	}
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("cron job panicked")
		}
	}()

	start := time.Now()
	log.Info("starting cron job")
	if err := fn(s.ctx); err != nil {
		log.WithError(err).Error("cron job failed")
		return
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("completed cron job")
}

// Stop removes the named job. It reports false when no such job exists.
func (s *CronScheduler) Stop(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		s.log().WithField("job", name).Warn("cron job not found")
		return false
	}
	s.cron.Remove(j.id)
	delete(s.jobs, name)
	s.log().WithField("job", name).Info("cron job stopped")
	return true
}

// StopAll removes every job, halts the runner and cancels running jobs' context.
func (s *CronScheduler) StopAll() {
	s.mu.Lock()
	for name, j := range s.jobs {
		s.cron.Remove(j.id)
		delete(s.jobs, name)
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.cancel()
}

func (s *CronScheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *CronScheduler) Status() []ports.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.JobStatus, 0, len(s.jobs))
	for name, j := range s.jobs {
		e := s.cron.Entry(j.id)
		out = append(out, ports.JobStatus{
			Name:     name,
			Schedule: j.spec,
			Running:  j.running.Load(),
			Next:     e.Next,
			Prev:     e.Prev,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *CronScheduler) log() *logrus.Entry {
	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		return logrus.NewEntry(l)
	}
	return logrus.NewEntry(s.logger)
}
