// Package analyze routes post batches through the inference provider chain
// and guarantees every post one judgment, via the keyword fallback when the
// chain is exhausted.
package analyze

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/provider"
	"github.com/sells-group/mention-cli/internal/resilience"
)

// Config controls orchestrator behavior.
type Config struct {
	// BatchSize is the number of posts per classification call. Default: 10.
	BatchSize int

	// MaxConcurrency bounds how many batches are in flight at once, to keep
	// the aggregate request rate against the providers sane. Default: 2.
	MaxConcurrency int

	// CallTimeout bounds a single provider call. Default: 30s.
	CallTimeout time.Duration

	// Backoff applies between provider attempts for the same batch.
	Backoff resilience.BackoffConfig
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 2
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	return c
}

// Result is the outcome of one analysis pass.
type Result struct {
	Posts         []model.JudgedPost
	Providers     []model.ProviderDiagnostic
	FallbackCount int
}

// Orchestrator drives the provider chain. All mutable health state is
// scoped to one Analyze call.
type Orchestrator struct {
	cfg       Config
	providers []provider.Provider
	fallback  *KeywordClassifier
}

// NewOrchestrator creates an analysis orchestrator over the given provider
// chain, tried in the order given.
func NewOrchestrator(cfg Config, providers []provider.Provider) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg.withDefaults(),
		providers: providers,
		fallback:  NewKeywordClassifier(),
	}
}

// Analyze classifies every post. The output has the same cardinality and
// order as the input: batches the whole chain fails on, and batches never
// attempted because the run was canceled, fall back to the keyword
// classifier rather than being dropped. The progress callback may be nil.
func (o *Orchestrator) Analyze(ctx context.Context, posts []model.Post, brand model.BrandConfig, progress func(string)) Result {
	cfg := o.cfg

	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	health := newProviderHealth(names)

	judged := make([]model.JudgedPost, len(posts))
	var fallbackCount int
	var fallbackMu sync.Mutex

	report := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	batches := partition(posts, cfg.BatchSize)
	report(fmt.Sprintf("Classifying %d posts in %d batches...", len(posts), len(batches)))

	system := renderSystemPrompt(brand)

	g := new(errgroup.Group)
	g.SetLimit(cfg.MaxConcurrency)

	offset := 0
	for bi, batch := range batches {
		start := offset
		offset += len(batch)

		g.Go(func() error {
			judgments, usedFallback := o.classifyBatch(ctx, system, brand, batch, bi, len(batches), health)
			for i, j := range judgments {
				judged[start+i] = model.JudgedPost{Post: batch[i], Judgment: j}
			}
			if usedFallback > 0 {
				fallbackMu.Lock()
				fallbackCount += usedFallback
				fallbackMu.Unlock()
			}
			report(fmt.Sprintf("Classified batch %d/%d", bi+1, len(batches)))
			return nil
		})
	}
	_ = g.Wait()

	diags := health.Diagnostics()
	if fallbackCount > 0 {
		report(fmt.Sprintf("Keyword fallback used for %d posts", fallbackCount))
	}

	zap.L().Info("analyze: complete",
		zap.Int("posts", len(posts)),
		zap.Int("batches", len(batches)),
		zap.Int("fallback_posts", fallbackCount),
	)

	return Result{
		Posts:         judged,
		Providers:     diags,
		FallbackCount: fallbackCount,
	}
}

// classifyBatch tries each provider in priority order, then the keyword
// fallback. Returns the judgments plus how many came from the fallback.
func (o *Orchestrator) classifyBatch(ctx context.Context, system string, brand model.BrandConfig, batch []model.Post, batchIdx, batchTotal int, health *providerHealth) ([]model.Judgment, int) {
	user, err := renderBatchPrompt(batch)
	if err == nil && ctx.Err() == nil {
		attempt := 0
		for _, p := range o.providers {
			if ctx.Err() != nil {
				break
			}
			if health.RateLimited(p.Name()) {
				zap.L().Debug("analyze: skipping rate-limited provider",
					zap.String("provider", p.Name()),
					zap.Int("batch", batchIdx+1),
				)
				continue
			}

			health.RecordAttempt(p.Name())
			callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
			raw, callErr := p.Complete(callCtx, system, user)
			cancel()

			if callErr == nil {
				judgments, parseErr := parseBatchResponse(raw, p.Name(), batch)
				if parseErr == nil {
					health.RecordClassified(p.Name())
					zap.L().Debug("analyze: batch classified",
						zap.String("provider", p.Name()),
						zap.Int("batch", batchIdx+1),
						zap.Int("total", batchTotal),
					)
					return judgments, 0
				}
				callErr = parseErr
			}

			if resilience.IsRateLimited(callErr) {
				// Flagged for the rest of the run, not just this batch.
				health.FlagRateLimited(p.Name())
				zap.L().Warn("analyze: provider rate-limited, skipping for rest of run",
					zap.String("provider", p.Name()),
					zap.Int("batch", batchIdx+1),
				)
			} else {
				zap.L().Warn("analyze: provider failed for batch",
					zap.String("provider", p.Name()),
					zap.Int("batch", batchIdx+1),
					zap.String("kind", resilience.KindOf(callErr).String()),
					zap.Error(callErr),
				)
			}

			// Backoff before the next provider in the chain; the exhausted
			// provider itself is not retried for this batch.
			if err := o.cfg.Backoff.Sleep(ctx, attempt); err != nil {
				break
			}
			attempt++
		}
	}

	// Chain exhausted, no key configured, or run canceled: the batch still
	// gets judged, just without inference.
	judgments := make([]model.Judgment, len(batch))
	for i, post := range batch {
		judgments[i] = o.fallback.Classify(post, brand)
	}
	return judgments, len(batch)
}

// partition splits posts into fixed-size batches, preserving order.
func partition(posts []model.Post, size int) [][]model.Post {
	if len(posts) == 0 {
		return nil
	}
	var batches [][]model.Post
	for start := 0; start < len(posts); start += size {
		end := start + size
		if end > len(posts) {
			end = len(posts)
		}
		batches = append(batches, posts[start:end])
	}
	return batches
}
