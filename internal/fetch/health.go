package fetch

import (
	"sync"

	"github.com/sells-group/mention-cli/internal/model"
)

// adapterHealth tracks one source adapter's failure state for a single run.
// A fresh set is built per run; concurrent runs never share these.
type adapterHealth struct {
	mu sync.Mutex

	source              string
	consecutiveFailures int
	disabled            bool
	disabledReason      string

	tasksAttempted int
	tasksSucceeded int
	tasksFailed    int
	postsFetched   int
	postsAdmitted  int
}

// Disabled reports whether the adapter is out for the rest of the run.
func (h *adapterHealth) Disabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disabled
}

// RecordSuccess resets the consecutive-failure counter.
func (h *adapterHealth) RecordSuccess(fetched, admitted int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasksAttempted++
	h.tasksSucceeded++
	h.postsFetched += fetched
	h.postsAdmitted += admitted
	h.consecutiveFailures = 0
}

// RecordFailure increments the consecutive-failure counter and disables the
// adapter once it reaches threshold. Returns true if this call disabled it.
func (h *adapterHealth) RecordFailure(threshold int, reason string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasksAttempted++
	h.tasksFailed++
	h.consecutiveFailures++
	if !h.disabled && h.consecutiveFailures >= threshold {
		h.disabled = true
		h.disabledReason = reason
		return true
	}
	return false
}

// Disable takes the adapter out immediately, regardless of the counter.
// Used for blocked sources where retrying is pointless within the run.
func (h *adapterHealth) Disable(reason string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasksAttempted++
	h.tasksFailed++
	h.consecutiveFailures++
	if h.disabled {
		return false
	}
	h.disabled = true
	h.disabledReason = reason
	return true
}

// Diagnostic snapshots the health state for the run report.
func (h *adapterHealth) Diagnostic() model.SourceDiagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	return model.SourceDiagnostic{
		Source:         h.source,
		TasksAttempted: h.tasksAttempted,
		TasksSucceeded: h.tasksSucceeded,
		TasksFailed:    h.tasksFailed,
		PostsFetched:   h.postsFetched,
		PostsAdmitted:  h.postsAdmitted,
		Disabled:       h.disabled,
		DisabledReason: h.disabledReason,
	}
}
