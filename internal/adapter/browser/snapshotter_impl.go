// Package browser implements the PageSnapshotter interface with a headless
// Chrome instance via chromedp.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// SnapshotterImpl fetches the rendered title of a page. Each call allocates
// its own browser context; snapshots only run on the fallback path, so there
// is no pool to keep warm.
type SnapshotterImpl struct {
	timeout time.Duration
}

// NewSnapshotter creates a snapshotter with the given per-page timeout.
func NewSnapshotter(pageLoadTimeout time.Duration) *SnapshotterImpl {
	return &SnapshotterImpl{timeout: pageLoadTimeout}
}

// Title navigates to the URL and returns the document title.
func (s *SnapshotterImpl) Title(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, s.timeout)
	defer cancelTimeout()

	var title string
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.Title(&title),
	); err != nil {
		return "", err
	}
	return title, nil
}
