// Package memstore holds analysis jobs in process memory. Jobs do not
// survive a restart; a persistent store can replace this behind
// repository.JobRepository without touching the use cases.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/user/context-service/internal/entity"
	"github.com/user/context-service/internal/repository"
)

// JobStoreImpl provides a concrete implementation for the JobRepository
// interface backed by a mutex-guarded map.
type JobStoreImpl struct {
	mu   sync.Mutex
	jobs map[string]*entity.AnalysisJob
}

// NewJobStore creates an empty in-memory job store.
func NewJobStore() *JobStoreImpl {
	return &JobStoreImpl{jobs: make(map[string]*entity.AnalysisJob)}
}

// Save creates or replaces a job record.
func (s *JobStoreImpl) Save(_ context.Context, job *entity.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

// Get retrieves a copy of the job, so callers never share the stored record.
func (s *JobStoreImpl) Get(_ context.Context, id string) (*entity.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// Update applies fn to the stored job under the store lock, so a job
// deleted by a concurrent caller is never written back.
func (s *JobStoreImpl) Update(_ context.Context, id string, fn func(*entity.AnalysisJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return repository.ErrJobNotFound
	}
	fn(job)
	return nil
}

// List returns up to limit jobs, newest first.
func (s *JobStoreImpl) List(_ context.Context, limit int) ([]*entity.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*entity.AnalysisJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Delete removes a job and its result.
func (s *JobStoreImpl) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}
