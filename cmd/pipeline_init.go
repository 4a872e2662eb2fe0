package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/analyze"
	"github.com/sells-group/mention-cli/internal/config"
	"github.com/sells-group/mention-cli/internal/fetch"
	"github.com/sells-group/mention-cli/internal/provider"
	"github.com/sells-group/mention-cli/internal/research"
	"github.com/sells-group/mention-cli/internal/source"
)

// buildRunner assembles the source chain, provider chain, and both
// orchestrators from configuration. Anything wrong here is a configuration
// error and fails before a single network call.
func buildRunner(cfg *config.Config) (*research.Runner, error) {
	official, err := source.NewOfficial(
		cfg.Sources.Official.ClientID,
		cfg.Sources.Official.ClientSecret,
		cfg.Sources.Official.Username,
		cfg.Sources.Official.Password,
		cfg.Sources.Official.UserAgent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "build official source")
	}

	sources := []source.Source{
		source.NewArcticShift(cfg.Sources.ArcticShift.BaseURL,
			source.WithArcticShiftMaxPages(cfg.Fetch.MaxPages)),
		official,
		source.NewFeed(cfg.Sources.Feed.BaseURL, cfg.Sources.Official.UserAgent, cfg.Sources.Feed.MaxPosts),
		source.NewPullpush(cfg.Sources.Pullpush.BaseURL),
	}

	fetcher := fetch.NewOrchestrator(fetch.Config{
		LookbackDays:     cfg.Fetch.LookbackDays,
		CourtesyDelay:    time.Duration(cfg.Fetch.CourtesyDelaySec * float64(time.Second)),
		DisableThreshold: cfg.Fetch.DisableThreshold,
		TaskTimeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
	}, sources...)

	chain := provider.BuildChain(cfg.Providers)
	if len(chain) == 0 {
		zap.L().Warn("no inference provider configured, every post will be keyword-classified")
	}

	analyzer := analyze.NewOrchestrator(analyze.Config{
		BatchSize:      cfg.Analyze.BatchSize,
		MaxConcurrency: cfg.Analyze.MaxConcurrency,
		CallTimeout:    time.Duration(cfg.Analyze.TimeoutSecs) * time.Second,
	}, chain)

	return research.NewRunner(fetcher, analyzer)
}
