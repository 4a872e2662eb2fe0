// Package source provides the post retrieval adapters the fetch
// orchestrator drives in priority order.
package source

import (
	"context"
	"time"

	"github.com/sells-group/mention-cli/internal/model"
)

// Window bounds a search to a historical time span.
type Window struct {
	After  time.Time
	Before time.Time
}

// LookbackWindow returns a window covering the last n days.
func LookbackWindow(days int) Window {
	now := time.Now().UTC()
	return Window{
		After:  now.AddDate(0, 0, -days),
		Before: now,
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.After) {
		return false
	}
	if !w.Before.IsZero() && t.After(w.Before) {
		return false
	}
	return true
}

// Source retrieves posts matching a term within one container. Failures are
// classified via the resilience package so the orchestrator can distinguish
// blocked sources from transient outages.
type Source interface {
	Search(ctx context.Context, term, container string, window Window) ([]model.Post, error)
	Name() string
}
