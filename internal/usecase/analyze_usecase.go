package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/user/context-service/internal/entity"
	"github.com/user/context-service/internal/ratelimit"
	"github.com/user/context-service/internal/repository"
	"github.com/user/context-service/internal/urlguard"
	"github.com/user/context-service/pkg/metrics"
)

// Result is the outcome of one successful analysis. AICalled is false when
// the context came from basic detection instead of the generator.
type Result struct {
	Context  *entity.CompanyContext
	AICalled bool
}

// Analyzer runs the synchronous analysis pipeline: rate check, URL guard,
// generator call, structured extraction.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL, callerID string, fallbackOnError bool) (*Result, error)
}

type analyzeUseCase struct {
	limiter ratelimit.Limiter
	pipe    contextPipeline
}

// NewAnalyzer creates the Analyzer use case. generator may be nil when no
// credential is configured; contexts and snapshots may be nil to disable
// persistence and title enrichment.
func NewAnalyzer(
	limiter ratelimit.Limiter,
	generator repository.ContextGenerator,
	contexts repository.ContextRepository,
	snapshots repository.PageSnapshotter,
) Analyzer {
	return &analyzeUseCase{
		limiter: limiter,
		pipe: contextPipeline{
			generator: generator,
			contexts:  contexts,
			snapshots: snapshots,
		},
	}
}

func (uc *analyzeUseCase) Analyze(ctx context.Context, rawURL, callerID string, fallbackOnError bool) (*Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrMissingURL
	}

	// Cheapest check first: a throttled caller costs nothing downstream.
	decision, err := uc.limiter.Allow(ctx, callerID)
	switch {
	case err != nil:
		// The limiter is an availability control, not a security boundary;
		// a broken shared store fails open rather than taking the API down.
		slog.Warn("rate limiter unavailable, admitting request", "error", err)
	case !decision.Allowed:
		metrics.RateLimitDenials.Inc()
		metrics.AnalysesTotal.WithLabelValues("rejected", "rate_limited").Inc()
		return nil, &RateLimitError{ResetAfter: decision.ResetAfter}
	}

	validated, err := urlguard.Validate(rawURL)
	if err != nil {
		var rej *urlguard.RejectionError
		if errors.As(err, &rej) {
			metrics.AnalysesTotal.WithLabelValues("rejected", string(rej.Reason)).Inc()
			slog.Info("url rejected", "reason", rej.Reason)
		}
		return nil, err
	}

	return uc.pipe.run(ctx, validated, fallbackOnError)
}
