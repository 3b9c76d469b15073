package fetcher

import (
	"context"
	"fmt"

	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// SessionFetcher reads pages through the browser session for sites whose
// content is rendered by script
type SessionFetcher struct {
	navigator interfaces.Navigator
}

// NewSessionFetcher wraps a navigator (normally *browser.Manager)
func NewSessionFetcher(navigator interfaces.Navigator) *SessionFetcher {
	return &SessionFetcher{navigator: navigator}
}

// Fetch navigates to url. Crash recovery happens inside the navigator; any
// remaining failure is reported as a transient fetch failure.
func (f *SessionFetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, ok := f.navigator.SafeNavigate(ctx, url)
	if !ok {
		return "", fmt.Errorf("%w: navigation to %s failed", models.ErrTransientFetch, url)
	}
	return html, nil
}
