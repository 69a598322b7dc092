package repository

import "context"

// PageSnapshotter fetches a minimal rendered snapshot of a page. Used to
// enrich fallback detection with the live page title when the AI
// collaborator is unavailable.
type PageSnapshotter interface {
	Title(ctx context.Context, url string) (string, error)
}
