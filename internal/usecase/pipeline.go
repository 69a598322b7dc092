package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/user/context-service/internal/entity"
	"github.com/user/context-service/internal/extract"
	"github.com/user/context-service/internal/repository"
	"github.com/user/context-service/pkg/metrics"
)

// contextPipeline is the post-admission stage shared by the synchronous
// analyzer and the background job runner: generator call, extraction,
// fallback, persistence. Admission (rate limit + URL guard) has already
// happened by the time run is called.
type contextPipeline struct {
	generator repository.ContextGenerator
	contexts  repository.ContextRepository
	snapshots repository.PageSnapshotter
}

func (p *contextPipeline) run(ctx context.Context, validatedURL string, fallbackOnError bool) (*Result, error) {
	if p.generator == nil {
		if !fallbackOnError {
			return nil, &UpstreamError{Err: errNoGenerator}
		}
		slog.Warn("no generator configured, using basic detection", "url", validatedURL)
		return p.fallback(ctx, validatedURL), nil
	}

	start := time.Now()
	raw, err := p.generator.Generate(ctx, validatedURL)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error", "upstream_unreachable").Inc()
		slog.Error("generator call failed", "url", validatedURL, "error", err)
		if fallbackOnError {
			return p.fallback(ctx, validatedURL), nil
		}
		return nil, &UpstreamError{Err: err}
	}

	data, err := extract.Extract(raw)
	if err != nil {
		reason := string(extract.ReasonMalformedJSON)
		var extErr *extract.ExtractionError
		if errors.As(err, &extErr) {
			reason = string(extErr.Reason)
		}
		metrics.AnalysesTotal.WithLabelValues("error", reason).Inc()
		slog.Error("failed to recover structured result", "url", validatedURL, "error", err)
		if fallbackOnError {
			return p.fallback(ctx, validatedURL), nil
		}
		return nil, err
	}

	if data.CompanyURL == "" {
		data.CompanyURL = validatedURL
	}
	metrics.AnalysisDuration.WithLabelValues("ai").Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues("success", "ai").Inc()
	slog.Info("analysis complete", "url", validatedURL, "company", data.CompanyName)

	p.persist(ctx, data, true)
	return &Result{Context: data, AICalled: true}, nil
}

// fallback produces a minimal context from the URL alone, optionally
// enriched with the live page title.
func (p *contextPipeline) fallback(ctx context.Context, validatedURL string) *Result {
	data := basicDetection(validatedURL)
	if p.snapshots != nil {
		if title, err := p.snapshots.Title(ctx, validatedURL); err != nil {
			slog.Debug("page snapshot failed", "url", validatedURL, "error", err)
		} else if title != "" {
			data.Description = title
		}
	}
	metrics.AnalysesTotal.WithLabelValues("success", "fallback").Inc()
	p.persist(ctx, data, false)
	return &Result{Context: data, AICalled: false}
}

// persist stores the result when a repository is configured. Persistence is
// best-effort: a failed save is logged, never surfaced to the caller.
func (p *contextPipeline) persist(ctx context.Context, data *entity.CompanyContext, aiCalled bool) {
	if p.contexts == nil {
		return
	}
	if err := p.contexts.Save(ctx, data, aiCalled); err != nil {
		slog.Warn("failed to persist company context", "url", data.CompanyURL, "error", err)
	}
}
