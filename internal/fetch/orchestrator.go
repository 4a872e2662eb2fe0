// Package fetch drives the source adapters across the lookback window and
// returns a deduplicated post set with per-source diagnostics.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
	"github.com/sells-group/mention-cli/internal/source"
)

// DefaultContainers is searched for every brand on top of its own hints.
var DefaultContainers = []string{
	"india", "AskIndia", "indiasocial",
	"IndianGaming", "IndianConsumer", "IndiaTech",
	"gadgets", "technology", "BuyItForLife",
	"IndianSkincareAddicts", "IndianFashionAddicts",
	"IndiaInvestments", "CreditCardsIndia",
	"Fitness", "SkincareAddiction",
}

// Config controls orchestrator behavior.
type Config struct {
	// LookbackDays is the historical span each run searches. Default: 90.
	LookbackDays int

	// CourtesyDelay is the minimum gap between consecutive calls to the
	// same adapter. Default: 2s.
	CourtesyDelay time.Duration

	// DisableThreshold is the consecutive-failure count that takes an
	// adapter out for the rest of the run. Default: 5.
	DisableThreshold int

	// TaskTimeout bounds a single adapter search call. Default: 30s.
	TaskTimeout time.Duration

	// Containers overrides DefaultContainers when non-nil.
	Containers []string
}

func (c Config) withDefaults() Config {
	if c.LookbackDays <= 0 {
		c.LookbackDays = 90
	}
	if c.CourtesyDelay <= 0 {
		c.CourtesyDelay = 2 * time.Second
	}
	if c.DisableThreshold <= 0 {
		c.DisableThreshold = 5
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 30 * time.Second
	}
	if c.Containers == nil {
		c.Containers = DefaultContainers
	}
	return c
}

// Orchestrator fans search tasks out to the adapters in priority order.
// All mutable state is scoped to one Fetch call, so a single Orchestrator
// is safe for concurrent runs.
type Orchestrator struct {
	cfg     Config
	sources []source.Source
}

// NewOrchestrator creates a fetch orchestrator over the given adapters,
// tried in the order given.
func NewOrchestrator(cfg Config, sources ...source.Source) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg.withDefaults(),
		sources: sources,
	}
}

// Fetch collects posts for the brand across every source. It never fails on
// partial outage: whatever was admitted is returned along with diagnostics
// explaining the degradation. The progress callback may be nil.
func (o *Orchestrator) Fetch(ctx context.Context, brand model.BrandConfig, progress func(string)) ([]model.Post, []model.SourceDiagnostic) {
	cfg := o.cfg
	window := source.LookbackWindow(cfg.LookbackDays)
	containers := buildContainerList(brand.SubredditHints, cfg.Containers)
	terms := brand.SearchTerms()

	admitted := make(map[string]struct{})
	var posts []model.Post

	healths := make([]*adapterHealth, len(o.sources))
	for i, src := range o.sources {
		healths[i] = &adapterHealth{source: src.Name()}
	}

	report := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	for i, src := range o.sources {
		health := healths[i]
		limiter := rate.NewLimiter(rate.Every(cfg.CourtesyDelay), 1)

		report(fmt.Sprintf("Searching %s (%d containers, %d terms)...", src.Name(), len(containers), len(terms)))
		before := len(posts)

	tasks:
		for _, container := range containers {
			for _, term := range terms {
				if ctx.Err() != nil {
					zap.L().Info("fetch: run canceled",
						zap.String("brand", brand.Name),
						zap.String("source", src.Name()),
					)
					return o.finish(posts, healths, report, true)
				}
				if health.Disabled() {
					break tasks
				}

				if err := limiter.Wait(ctx); err != nil {
					return o.finish(posts, healths, report, true)
				}

				taskCtx, cancel := context.WithTimeout(ctx, cfg.TaskTimeout)
				results, err := src.Search(taskCtx, term, container, window)
				cancel()

				if err != nil {
					o.recordTaskFailure(health, src.Name(), container, term, err)
					continue
				}

				admittedNow := 0
				for _, p := range results {
					if p.ID == "" {
						continue
					}
					if _, seen := admitted[p.ID]; seen {
						continue
					}
					admitted[p.ID] = struct{}{}
					posts = append(posts, p)
					admittedNow++
				}
				health.RecordSuccess(len(results), admittedNow)

				if len(results) > 0 {
					zap.L().Debug("fetch: task complete",
						zap.String("source", src.Name()),
						zap.String("container", container),
						zap.String("term", term),
						zap.Int("raw", len(results)),
						zap.Int("new", admittedNow),
					)
				}
			}
		}

		diag := health.Diagnostic()
		msg := fmt.Sprintf("%s: +%d posts (%d total)", src.Name(), len(posts)-before, len(posts))
		if diag.TasksFailed > 0 {
			msg += fmt.Sprintf(", %d task errors", diag.TasksFailed)
		}
		if diag.Disabled {
			msg += fmt.Sprintf(" — disabled: %s", diag.DisabledReason)
		}
		report(msg)

		if allDisabled(healths) {
			zap.L().Warn("fetch: every source disabled, stopping early",
				zap.String("brand", brand.Name),
			)
			break
		}
	}

	return o.finish(posts, healths, report, false)
}

func (o *Orchestrator) recordTaskFailure(health *adapterHealth, src, container, term string, err error) {
	kind := resilience.KindOf(err)

	var disabledNow bool
	if kind == resilience.KindBlocked {
		// A blocked source stays blocked for the run; retrying other
		// containers against it just spends the time budget.
		disabledNow = health.Disable("access blocked")
	} else {
		reason := fmt.Sprintf("%d consecutive failures", o.cfg.DisableThreshold)
		disabledNow = health.RecordFailure(o.cfg.DisableThreshold, reason)
	}

	zap.L().Warn("fetch: task failed",
		zap.String("source", src),
		zap.String("container", container),
		zap.String("term", term),
		zap.String("kind", kind.String()),
		zap.Error(err),
	)
	if disabledNow {
		zap.L().Warn("fetch: source disabled for remainder of run",
			zap.String("source", src),
			zap.String("kind", kind.String()),
		)
	}
}

func (o *Orchestrator) finish(posts []model.Post, healths []*adapterHealth, report func(string), canceled bool) ([]model.Post, []model.SourceDiagnostic) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	diags := make([]model.SourceDiagnostic, len(healths))
	summary := make([]string, 0, len(healths))
	for i, h := range healths {
		diags[i] = h.Diagnostic()
		summary = append(summary, fmt.Sprintf("%s: %d", diags[i].Source, diags[i].PostsAdmitted))
	}

	msg := fmt.Sprintf("Fetched %d unique posts. [%s]", len(posts), strings.Join(summary, " | "))
	if canceled {
		msg = "Fetch canceled. " + msg
	}
	report(msg)

	zap.L().Info("fetch: complete",
		zap.Int("posts", len(posts)),
		zap.Bool("canceled", canceled),
	)
	return posts, diags
}

func allDisabled(healths []*adapterHealth) bool {
	for _, h := range healths {
		if !h.Disabled() {
			return false
		}
	}
	return true
}

// buildContainerList puts brand hints first, then the defaults, skipping
// case-insensitive duplicates.
func buildContainerList(hints, defaults []string) []string {
	seen := make(map[string]struct{}, len(hints)+len(defaults))
	out := make([]string, 0, len(hints)+len(defaults))
	for _, lists := range [][]string{hints, defaults} {
		for _, c := range lists {
			key := strings.ToLower(c)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
