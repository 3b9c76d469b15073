package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/leadhound/internal/models"
)

func TestIsCrashError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"sentinel", models.ErrSessionCrashed, true},
		{"wrapped sentinel", fmt.Errorf("navigate: %w", models.ErrSessionCrashed), true},
		{"tab crashed", errors.New("unknown error: session deleted because of page crash from tab crashed"), true},
		{"renderer", errors.New("Renderer process exited"), true},
		{"disconnected", errors.New("chrome not reachable: disconnected"), true},
		{"websocket close", errors.New("websocket: close 1006 (abnormal closure)"), true},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped deadline", fmt.Errorf("navigation timed out: %w", context.DeadlineExceeded), false},
		{"dns", errors.New("net::ERR_NAME_NOT_RESOLVED"), false},
		{"http status", errors.New("page returned 404"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCrashError(tt.err))
		})
	}
}
