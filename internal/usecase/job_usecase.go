package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/context-service/internal/entity"
	"github.com/user/context-service/internal/ratelimit"
	"github.com/user/context-service/internal/repository"
	"github.com/user/context-service/internal/urlguard"
	"github.com/user/context-service/pkg/metrics"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 100

	// jobRunTimeout bounds one background analysis including the upstream call.
	jobRunTimeout = 3 * time.Minute
)

// JobManager runs analyses as background jobs. Admission (rate limit and URL
// guard) happens at submission, so a job that is accepted has already
// consumed its quota.
type JobManager interface {
	Submit(ctx context.Context, rawURL, callerID string, fallbackOnError bool) (*entity.AnalysisJob, error)
	Get(ctx context.Context, id string) (*entity.AnalysisJob, error)
	List(ctx context.Context, limit int) ([]*entity.AnalysisJob, error)
	Delete(ctx context.Context, id string) error
}

type jobUseCase struct {
	jobs    repository.JobRepository
	limiter ratelimit.Limiter
	pipe    contextPipeline
}

// NewJobManager creates the background-job use case over the same pipeline
// collaborators as NewAnalyzer.
func NewJobManager(
	jobs repository.JobRepository,
	limiter ratelimit.Limiter,
	generator repository.ContextGenerator,
	contexts repository.ContextRepository,
	snapshots repository.PageSnapshotter,
) JobManager {
	return &jobUseCase{
		jobs:    jobs,
		limiter: limiter,
		pipe: contextPipeline{
			generator: generator,
			contexts:  contexts,
			snapshots: snapshots,
		},
	}
}

func (uc *jobUseCase) Submit(ctx context.Context, rawURL, callerID string, fallbackOnError bool) (*entity.AnalysisJob, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrMissingURL
	}

	decision, err := uc.limiter.Allow(ctx, callerID)
	switch {
	case err != nil:
		slog.Warn("rate limiter unavailable, admitting job", "error", err)
	case !decision.Allowed:
		metrics.RateLimitDenials.Inc()
		return nil, &RateLimitError{ResetAfter: decision.ResetAfter}
	}

	validated, err := urlguard.Validate(rawURL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &entity.AnalysisJob{
		ID:        uuid.NewString(),
		URL:       validated,
		Status:    entity.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	go uc.runJob(job.ID, validated, fallbackOnError)
	return job, nil
}

func (uc *jobUseCase) Get(ctx context.Context, id string) (*entity.AnalysisJob, error) {
	return uc.jobs.Get(ctx, id)
}

func (uc *jobUseCase) List(ctx context.Context, limit int) ([]*entity.AnalysisJob, error) {
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	if limit > maxJobListLimit {
		limit = maxJobListLimit
	}
	return uc.jobs.List(ctx, limit)
}

func (uc *jobUseCase) Delete(ctx context.Context, id string) error {
	return uc.jobs.Delete(ctx, id)
}

// runJob executes one analysis outside the submitting request's lifetime.
func (uc *jobUseCase) runJob(id, validatedURL string, fallbackOnError bool) {
	ctx, cancel := context.WithTimeout(context.Background(), jobRunTimeout)
	defer cancel()

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	uc.update(ctx, id, func(job *entity.AnalysisJob) {
		job.Status = entity.JobRunning
	})

	result, err := uc.pipe.run(ctx, validatedURL, fallbackOnError)
	if err != nil {
		slog.Error("analysis job failed", "job_id", id, "url", validatedURL, "error", err)
		uc.update(ctx, id, func(job *entity.AnalysisJob) {
			job.Status = entity.JobFailed
			job.Error = err.Error()
		})
		return
	}

	uc.update(ctx, id, func(job *entity.AnalysisJob) {
		job.Status = entity.JobCompleted
		job.Result = result.Context
		job.AICalled = result.AICalled
	})
}

// update applies fn to the stored job. A job deleted mid-run simply stops
// receiving updates.
func (uc *jobUseCase) update(ctx context.Context, id string, fn func(*entity.AnalysisJob)) {
	err := uc.jobs.Update(ctx, id, func(job *entity.AnalysisJob) {
		fn(job)
		job.UpdatedAt = time.Now().UTC()
	})
	if err != nil && !errors.Is(err, repository.ErrJobNotFound) {
		slog.Warn("failed to update job", "job_id", id, "error", err)
	}
}
