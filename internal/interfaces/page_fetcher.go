// -----------------------------------------------------------------------
// Page Fetcher Interface - Retrieve raw markup for a URL
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
)

// PageFetcher returns the raw markup behind a URL.
// Implementations apply their own timeout and user agent.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Navigator is the capability the session-backed fetcher and the resolver need
// from the browser session manager
type Navigator interface {
	// SafeNavigate loads the URL, recovering from crash-class failures.
	// ok is false when the page could not be loaded.
	SafeNavigate(ctx context.Context, url string) (html string, ok bool)
}
