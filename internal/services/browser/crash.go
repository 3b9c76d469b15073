package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/ternarybob/leadhound/internal/models"
)

// crashSignatures are lowercase fragments of errors raised when the browser
// or its renderer is gone. Anything else (timeouts, DNS, HTTP errors) is an
// ordinary navigation failure and is not retried.
var crashSignatures = []string{
	"tab crashed",
	"target crashed",
	"renderer crashed",
	"renderer process",
	"disconnected",
	"websocket: close",
	"session closed",
	"target closed",
	"browser closed",
}

// IsCrashError reports whether err means the session itself is unusable
func IsCrashError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrSessionCrashed) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, signature := range crashSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}
	return false
}
