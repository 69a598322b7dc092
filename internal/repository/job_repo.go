package repository

import (
	"context"

	"github.com/user/context-service/internal/entity"
)

// JobRepository manages asynchronous analysis jobs.
type JobRepository interface {
	// Save creates or replaces a job record.
	Save(ctx context.Context, job *entity.AnalysisJob) error
	// Get retrieves a job by ID, or ErrJobNotFound.
	Get(ctx context.Context, id string) (*entity.AnalysisJob, error)
	// Update atomically applies fn to the stored job, or returns
	// ErrJobNotFound. A concurrent Delete cannot interleave with fn.
	Update(ctx context.Context, id string, fn func(*entity.AnalysisJob)) error
	// List returns up to limit jobs, newest first.
	List(ctx context.Context, limit int) ([]*entity.AnalysisJob, error)
	// Delete removes a job and its result, or returns ErrJobNotFound.
	Delete(ctx context.Context, id string) error
}
