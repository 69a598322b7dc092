package repository

import "context"

// ContextGenerator is the external AI collaborator. Generate submits a
// validated company URL for analysis and returns the complete raw text the
// model produced; callers recover the structured result from that text.
type ContextGenerator interface {
	Generate(ctx context.Context, validatedURL string) (string, error)
}
