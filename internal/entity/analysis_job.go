package entity

import "time"

// JobStatus tracks the lifecycle of an asynchronous analysis job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// AnalysisJob is one queued or finished background analysis.
type AnalysisJob struct {
	ID        string
	URL       string
	Status    JobStatus
	Result    *CompanyContext
	AICalled  bool
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
