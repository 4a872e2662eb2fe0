package research

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/model"
)

// Registry tracks research runs in memory for the HTTP surface. Runs are
// discarded with the process; durable storage belongs to the caller.
type Registry struct {
	runner *Runner

	mu      sync.RWMutex
	runs    map[string]*model.Run
	cancels map[string]context.CancelFunc
}

// NewRegistry creates a run registry backed by the given runner.
func NewRegistry(runner *Runner) *Registry {
	return &Registry{
		runner:  runner,
		runs:    make(map[string]*model.Run),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start launches a run in the background and returns its ID immediately.
// Progress events are drained into the log so the run never blocks.
func (r *Registry) Start(ctx context.Context, brand model.BrandConfig) string {
	id := uuid.NewString()
	now := time.Now().UTC()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	r.mu.Lock()
	r.runs[id] = &model.Run{
		ID:        id,
		Brand:     brand.Name,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.cancels[id] = cancel
	r.mu.Unlock()

	go func() {
		defer cancel()

		progress := NewProgress(64)
		progress.PhaseFunc = func(status model.RunStatus) {
			r.setStatus(id, status, "")
		}
		go func() {
			for msg := range progress.Events() {
				zap.L().Info("run progress",
					zap.String("run_id", id),
					zap.String("event", msg),
				)
			}
		}()

		result, err := r.runner.Run(runCtx, brand, progress)
		progress.Close()

		switch {
		case err != nil:
			r.setStatus(id, model.RunStatusFailed, err.Error())
		case runCtx.Err() != nil:
			r.finish(id, model.RunStatusCanceled, result)
		default:
			r.finish(id, model.RunStatusComplete, result)
		}
	}()

	return id
}

// Get returns a snapshot of the run, if known.
func (r *Registry) Get(id string) (*model.Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, false
	}
	copied := *run
	return &copied, true
}

// List returns snapshots of all runs, newest first not guaranteed.
func (r *Registry) List() []*model.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Run, 0, len(r.runs))
	for _, run := range r.runs {
		copied := *run
		out = append(out, &copied)
	}
	return out
}

// Cancel requests cooperative cancellation of a run. In-flight calls are
// allowed to finish; the run then completes with whatever it accumulated.
func (r *Registry) Cancel(id string) bool {
	r.mu.RLock()
	cancel, ok := r.cancels[id]
	r.mu.RUnlock()
	if ok {
		cancel()
	}
	return ok
}

func (r *Registry) setStatus(id string, status model.RunStatus, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		run.Status = status
		run.Error = errMsg
		run.UpdatedAt = time.Now().UTC()
	}
}

func (r *Registry) finish(id string, status model.RunStatus, result *model.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		run.Status = status
		run.Result = result
		run.UpdatedAt = time.Now().UTC()
	}
}
