package model

import "time"

// RunStatus represents the current state of a research run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusFetching  RunStatus = "fetching"
	RunStatusAnalyzing RunStatus = "analyzing"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCanceled  RunStatus = "canceled"
)

// SourceDiagnostic reports one source adapter's health at the end of a run.
type SourceDiagnostic struct {
	Source         string `json:"source"`
	TasksAttempted int    `json:"tasks_attempted"`
	TasksSucceeded int    `json:"tasks_succeeded"`
	TasksFailed    int    `json:"tasks_failed"`
	PostsFetched   int    `json:"posts_fetched"`
	PostsAdmitted  int    `json:"posts_admitted"`
	Disabled       bool   `json:"disabled"`
	DisabledReason string `json:"disabled_reason,omitempty"`
}

// Degraded reports whether the source saw failures without being disabled.
func (d SourceDiagnostic) Degraded() bool {
	return !d.Disabled && d.TasksFailed > 0
}

// ProviderDiagnostic reports one inference provider's health at the end of a run.
type ProviderDiagnostic struct {
	Provider          string `json:"provider"`
	BatchesAttempted  int    `json:"batches_attempted"`
	BatchesClassified int    `json:"batches_classified"`
	RateLimited       bool   `json:"rate_limited"`
}

// RunDiagnostics is the degradation report attached to every run result.
type RunDiagnostics struct {
	Sources       []SourceDiagnostic   `json:"sources"`
	Providers     []ProviderDiagnostic `json:"providers"`
	FallbackCount int                  `json:"fallback_count"`
}

// DisabledSources returns the names of sources disabled during the run.
func (d RunDiagnostics) DisabledSources() []string {
	var names []string
	for _, s := range d.Sources {
		if s.Disabled {
			names = append(names, s.Source)
		}
	}
	return names
}

// RunResult is what a completed run hands back to the caller: every
// deduplicated post with exactly one judgment, plus the degradation report.
type RunResult struct {
	Brand       string         `json:"brand"`
	Posts       []JudgedPost   `json:"posts"`
	Diagnostics RunDiagnostics `json:"diagnostics"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// Run tracks one research run in the in-memory registry.
type Run struct {
	ID        string     `json:"id"`
	Brand     string     `json:"brand"`
	Status    RunStatus  `json:"status"`
	Error     string     `json:"error,omitempty"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
