package repository

import (
	"context"

	"github.com/user/context-service/internal/entity"
)

// ContextRepository persists completed analyses keyed by company URL.
type ContextRepository interface {
	// Save stores the context for a URL, replacing any previous analysis.
	Save(ctx context.Context, data *entity.CompanyContext, aiCalled bool) error
	// FindByURL retrieves a stored context, or ErrNotFound.
	FindByURL(ctx context.Context, url string) (*entity.CompanyContext, error)
}
