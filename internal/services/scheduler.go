package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"property-import-backend/internal/models"
)

// ImportRunner runs one scrape-and-import cycle.
type ImportRunner interface {
	RunImport(ctx context.Context, source string) (models.ImportJob, []string, error)
}

// Scheduler triggers recurring imports from cron expressions.
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	runner  ImportRunner
	timeout time.Duration
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler(runner ImportRunner, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		parser:  parser,
		runner:  runner,
		timeout: timeout,
		logger:  logger.With(slog.String("service", "scheduler")),
		entries: map[string]cron.EntryID{},
	}
}

// Schedule registers source to run on expr, replacing an earlier schedule.
func (s *Scheduler) Schedule(source, expr string) error {
	if _, err := s.parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid schedule %q for source %s: %w", expr, source, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[source]; ok {
		s.cron.Remove(id)
		delete(s.entries, source)
	}

	id, err := s.cron.AddFunc(expr, func() { s.run(source) })
	if err != nil {
		return fmt.Errorf("failed to schedule source %s: %w", source, err)
	}
	s.entries[source] = id
	s.logger.Info("import scheduled", "source", source, "schedule", expr)
	return nil
}

// Unschedule removes a source's schedule if present.
func (s *Scheduler) Unschedule(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[source]; ok {
		s.cron.Remove(id)
		delete(s.entries, source)
	}
}

// Scheduled returns the sources that currently have a schedule.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for source := range s.entries {
		out = append(out, source)
	}
	return out
}

// Trigger runs the import for source now, outside the cron schedule.
func (s *Scheduler) Trigger(source string) {
	s.run(source)
}

func (s *Scheduler) run(source string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	job, ids, err := s.runner.RunImport(ctx, source)
	if err != nil {
		s.logger.Error("scheduled import failed", "source", source, "job_id", job.ID, "error", err)
		return
	}
	s.logger.Info("scheduled import finished", "source", source, "job_id", job.ID,
		"properties_found", job.PropertiesFound, "properties_imported", len(ids))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running imports to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
