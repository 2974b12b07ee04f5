package services

import (
	"slices"
	"strings"
	"sync"

	"property-import-backend/internal/models"
)

// JobStore holds import jobs. Implementations must return copies so callers
// cannot mutate stored state.
type JobStore interface {
	Put(job models.ImportJob)
	Get(id string) (models.ImportJob, bool)
	List() []models.ImportJob
	// Update applies fn to the stored job under the store's lock.
	Update(id string, fn func(job *models.ImportJob) error) (models.ImportJob, error)
}

// MemoryJobStore keeps jobs for the lifetime of the process. Nothing is
// ever evicted.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]models.ImportJob
}

var _ JobStore = (*MemoryJobStore)(nil)

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]models.ImportJob)}
}

func (s *MemoryJobStore) Put(job models.ImportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
}

func (s *MemoryJobStore) Get(id string) (models.ImportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.ImportJob{}, false
	}
	return job.Clone(), true
}

// List returns all jobs, most recent first.
func (s *MemoryJobStore) List() []models.ImportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]models.ImportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}

	slices.SortFunc(jobs, func(a, b models.ImportJob) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return jobs
}

func (s *MemoryJobStore) Update(id string, fn func(job *models.ImportJob) error) (models.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.ImportJob{}, ErrJobNotFound
	}
	job = job.Clone()
	if err := fn(&job); err != nil {
		return models.ImportJob{}, err
	}
	s.jobs[id] = job
	return job.Clone(), nil
}
