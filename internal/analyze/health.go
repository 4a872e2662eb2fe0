package analyze

import (
	"sync"

	"github.com/sells-group/mention-cli/internal/model"
)

// providerHealth tracks per-provider rate-limit flags for one run. A flag,
// once set, is never cleared within the run: real limits usually outlive a
// single batch, and re-probing a limited provider wastes the budget.
// Whether the flag should instead expire after a bounded window is a policy
// knob left at the safe default.
type providerHealth struct {
	mu     sync.Mutex
	states map[string]*providerState
	order  []string
}

type providerState struct {
	rateLimited       bool
	batchesAttempted  int
	batchesClassified int
}

func newProviderHealth(names []string) *providerHealth {
	states := make(map[string]*providerState, len(names))
	for _, n := range names {
		states[n] = &providerState{}
	}
	return &providerHealth{states: states, order: names}
}

// RateLimited reports whether the provider is flagged for this run.
func (h *providerHealth) RateLimited(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.states[name].rateLimited
}

// FlagRateLimited marks the provider skipped for the rest of the run.
func (h *providerHealth) FlagRateLimited(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[name].rateLimited = true
}

// RecordAttempt counts one batch attempt against the provider.
func (h *providerHealth) RecordAttempt(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[name].batchesAttempted++
}

// RecordClassified counts one batch successfully classified by the provider.
func (h *providerHealth) RecordClassified(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[name].batchesClassified++
}

// Diagnostics snapshots provider health in chain order.
func (h *providerHealth) Diagnostics() []model.ProviderDiagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.ProviderDiagnostic, 0, len(h.order))
	for _, name := range h.order {
		s := h.states[name]
		out = append(out, model.ProviderDiagnostic{
			Provider:          name,
			BatchesAttempted:  s.batchesAttempted,
			BatchesClassified: s.batchesClassified,
			RateLimited:       s.rateLimited,
		})
	}
	return out
}
