package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/user/context-service/internal/delivery/http/request"
	"github.com/user/context-service/internal/delivery/http/response"
	"github.com/user/context-service/internal/extract"
	"github.com/user/context-service/internal/repository"
	"github.com/user/context-service/internal/urlguard"
	"github.com/user/context-service/internal/usecase"
)

// Handler exposes the analysis pipeline over HTTP. fallbackDefault applies
// to requests that omit the fallback_on_error flag.
type Handler struct {
	analyzer        usecase.Analyzer
	jobs            usecase.JobManager
	version         string
	fallbackDefault bool
}

func NewHandler(analyzer usecase.Analyzer, jobs usecase.JobManager, version string, fallbackDefault bool) *Handler {
	return &Handler{
		analyzer:        analyzer,
		jobs:            jobs,
		version:         version,
		fallbackDefault: fallbackDefault,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}

// HandleAnalyze runs a synchronous analysis. It blocks until the upstream
// call completes, typically tens of seconds.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req request.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.URL, ClientIP(r), req.Fallback(h.fallbackDefault))
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.AnalyzeResponse{
		CompanyContext: result.Context,
		AICalled:       result.AICalled,
	})
}

func (h *Handler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req request.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	job, err := h.jobs.Submit(r.Context(), req.URL, ClientIP(r), req.Fallback(h.fallbackDefault))
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.JobResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		Message:   "Analysis job started for " + job.URL,
		CreatedAt: job.CreatedAt,
	})
}

func (h *Handler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = parsed
	}

	jobs, err := h.jobs.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list jobs", "error", err)
		h.writeJSONError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	resp := make([]response.JobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, response.NewJobStatus(job, false))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			h.writeJSONError(w, http.StatusNotFound, "Job not found", "")
			return
		}
		slog.Error("failed to get job", "error", err)
		h.writeJSONError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewJobStatus(job, true))
}

func (h *Handler) HandleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			h.writeJSONError(w, http.StatusNotFound, "Job not found", "")
			return
		}
		slog.Error("failed to delete job", "error", err)
		h.writeJSONError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writePipelineError maps the pipeline's typed failures onto HTTP statuses:
// 400 for bad or SSRF-rejected input, 429 for throttled callers, 422 for
// unusable upstream output, 500 for everything else.
func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	var (
		rejErr   *urlguard.RejectionError
		rateErr  *usecase.RateLimitError
		extrErr  *extract.ExtractionError
		upstream *usecase.UpstreamError
	)
	switch {
	case errors.Is(err, usecase.ErrMissingURL):
		h.writeJSONError(w, http.StatusBadRequest, "URL is required", "")
	case errors.As(err, &rejErr):
		h.writeJSONError(w, http.StatusBadRequest, "URL was rejected", string(rejErr.Reason))
	case errors.As(err, &rateErr):
		seconds := int(rateErr.ResetAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		h.writeJSON(w, http.StatusTooManyRequests, response.ErrorResponse{
			Error:             "Rate limit exceeded",
			RetryAfterSeconds: seconds,
		})
	case errors.As(err, &extrErr):
		h.writeJSONError(w, http.StatusUnprocessableEntity, extrErr.Error(), string(extrErr.Reason))
	case errors.As(err, &upstream):
		slog.Error("upstream failure", "error", err)
		h.writeJSONError(w, http.StatusInternalServerError, "Upstream generator unavailable", "")
	default:
		slog.Error("analysis failed", "error", err)
		h.writeJSONError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, message, reason string) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message, Reason: reason})
}
