// Package research ties the fetch and analysis orchestrators into one run
// and exposes the caller-facing surface: progress events, run results, and
// the in-memory run registry.
package research

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/analyze"
	"github.com/sells-group/mention-cli/internal/fetch"
	"github.com/sells-group/mention-cli/internal/model"
)

// Runner executes research runs. It holds no per-run state; one Runner
// serves concurrent runs for different brands.
type Runner struct {
	fetcher  *fetch.Orchestrator
	analyzer *analyze.Orchestrator
}

// NewRunner wires the two orchestrators together. Fails fast when the
// fetch orchestrator has no sources: that is a configuration error, not a
// degradation to absorb at run time.
func NewRunner(fetcher *fetch.Orchestrator, analyzer *analyze.Orchestrator) (*Runner, error) {
	if fetcher == nil || analyzer == nil {
		return nil, eris.New("research: fetcher and analyzer are required")
	}
	return &Runner{fetcher: fetcher, analyzer: analyzer}, nil
}

// Run executes the full pipeline for one brand. It returns an error only
// for pre-flight validation; once fetching starts, failures degrade into
// the result's diagnostics instead. Cancellation via ctx stops new tasks
// promptly and returns whatever was accumulated.
func (r *Runner) Run(ctx context.Context, brand model.BrandConfig, progress *Progress) (*model.RunResult, error) {
	if brand.Name == "" {
		return nil, eris.New("research: brand name is required")
	}
	if len(brand.SearchTerms()) == 0 {
		return nil, eris.Errorf("research: brand %q has no search terms", brand.Name)
	}

	report := func(string) {}
	phase := func(model.RunStatus) {}
	if progress != nil {
		report = progress.Send
		if progress.PhaseFunc != nil {
			phase = progress.PhaseFunc
		}
	}

	started := time.Now().UTC()
	zap.L().Info("research: run started", zap.String("brand", brand.Name))

	phase(model.RunStatusFetching)
	posts, sourceDiags := r.fetcher.Fetch(ctx, brand, report)

	phase(model.RunStatusAnalyzing)
	analysis := r.analyzer.Analyze(ctx, posts, brand, report)

	result := &model.RunResult{
		Brand: brand.Name,
		Posts: analysis.Posts,
		Diagnostics: model.RunDiagnostics{
			Sources:       sourceDiags,
			Providers:     analysis.Providers,
			FallbackCount: analysis.FallbackCount,
		},
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}

	zap.L().Info("research: run complete",
		zap.String("brand", brand.Name),
		zap.Int("posts", len(result.Posts)),
		zap.Int("fallback_posts", result.Diagnostics.FallbackCount),
		zap.Duration("elapsed", result.FinishedAt.Sub(started)),
	)

	return result, nil
}
