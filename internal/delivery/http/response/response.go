package response

import (
	"time"

	"github.com/user/context-service/internal/entity"
)

// AnalyzeResponse is the 200 body for a synchronous analysis.
type AnalyzeResponse struct {
	*entity.CompanyContext
	AICalled bool `json:"ai_called"`
}

// JobResponse is the 202 body for job creation.
type JobResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// JobStatusResponse is a DTO for job status, mirroring entity.AnalysisJob.
// Result is elided in list views.
type JobStatusResponse struct {
	JobID     string                 `json:"job_id"`
	Status    string                 `json:"status"`
	URL       string                 `json:"url"`
	Result    *entity.CompanyContext `json:"result,omitempty"`
	AICalled  *bool                  `json:"ai_called,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body for every non-2xx reply.
type ErrorResponse struct {
	Error             string `json:"error"`
	Reason            string `json:"reason,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// NewJobStatus maps a job entity to its DTO.
func NewJobStatus(job *entity.AnalysisJob, includeResult bool) JobStatusResponse {
	resp := JobStatusResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		URL:       job.URL,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == entity.JobCompleted || job.Status == entity.JobFailed {
		aiCalled := job.AICalled
		resp.AICalled = &aiCalled
	}
	if includeResult {
		resp.Result = job.Result
	}
	return resp
}
