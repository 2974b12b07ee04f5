package models

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ImportJob tracks one acquisition run against one source.
type ImportJob struct {
	ID                 string     `json:"job_id"`
	Source             string     `json:"source"`
	Status             JobStatus  `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	PropertiesFound    int        `json:"properties_found"`
	PropertiesImported int        `json:"properties_imported"`
	Errors             []string   `json:"errors"`
}

// Transition moves the job forward. Only pending->running and
// running->completed|failed are accepted.
func (j *ImportJob) Transition(to JobStatus) error {
	ok := false
	switch j.Status {
	case JobStatusPending:
		ok = to == JobStatusRunning
	case JobStatusRunning:
		ok = to == JobStatusCompleted || to == JobStatusFailed
	}
	if !ok {
		return fmt.Errorf("invalid job transition %s -> %s", j.Status, to)
	}
	j.Status = to
	return nil
}

// Clone returns a copy with its own error slice.
func (j ImportJob) Clone() ImportJob {
	c := j
	c.Errors = append([]string(nil), j.Errors...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
