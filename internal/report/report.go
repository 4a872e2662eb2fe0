// Package report aggregates a judged post set into the numbers the caller
// renders or exports.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/sells-group/mention-cli/internal/model"
)

// Tally is a labeled count, sorted descending by count in summaries.
type Tally struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the aggregated view of one run's judged posts.
type Summary struct {
	Brand          string    `json:"brand"`
	TotalPosts     int       `json:"total_posts"`
	RelevantPosts  int       `json:"relevant_posts"`
	Positive       int       `json:"positive"`
	Negative       int       `json:"negative"`
	Neutral        int       `json:"neutral"`
	ByContainer    []Tally   `json:"by_container"`
	TopThemes      []Tally   `json:"top_themes"`
	Competitors    []Tally   `json:"competitors"`
	FallbackCount  int       `json:"fallback_count"`
	OldestPost     time.Time `json:"oldest_post,omitempty"`
	NewestPost     time.Time `json:"newest_post,omitempty"`
}

// Build aggregates judged posts into a Summary. Sentiment, container, and
// theme tallies cover relevant posts only; irrelevant posts count toward
// the total so degradation is visible.
func Build(brand string, posts []model.JudgedPost, diagnostics model.RunDiagnostics) Summary {
	s := Summary{
		Brand:         brand,
		TotalPosts:    len(posts),
		FallbackCount: diagnostics.FallbackCount,
	}

	folder := cases.Fold()
	containers := make(map[string]int)
	themes := make(map[string]int)
	competitors := make(map[string]int)

	for _, jp := range posts {
		created := jp.Post.CreatedAt
		if !created.IsZero() {
			if s.OldestPost.IsZero() || created.Before(s.OldestPost) {
				s.OldestPost = created
			}
			if created.After(s.NewestPost) {
				s.NewestPost = created
			}
		}

		if !jp.Judgment.Relevant {
			continue
		}
		s.RelevantPosts++

		switch jp.Judgment.Sentiment {
		case model.SentimentPositive:
			s.Positive++
		case model.SentimentNegative:
			s.Negative++
		default:
			s.Neutral++
		}

		containers[jp.Post.Container]++
		if theme := strings.TrimSpace(jp.Judgment.Theme); theme != "" {
			themes[folder.String(theme)]++
		}
		for _, c := range jp.Judgment.CompetitorMentions {
			competitors[c]++
		}
	}

	s.ByContainer = sortedTallies(containers, 0)
	s.TopThemes = sortedTallies(themes, 10)
	s.Competitors = sortedTallies(competitors, 0)
	return s
}

// Render formats the summary as the plain-text report the CLI prints.
func Render(s Summary, diagnostics model.RunDiagnostics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Brand research: %s\n", s.Brand)
	fmt.Fprintf(&b, "Posts: %d total, %d relevant\n", s.TotalPosts, s.RelevantPosts)
	if s.RelevantPosts > 0 {
		fmt.Fprintf(&b, "Sentiment: %d positive / %d negative / %d neutral\n", s.Positive, s.Negative, s.Neutral)
	}
	if !s.OldestPost.IsZero() {
		fmt.Fprintf(&b, "Range: %s to %s\n", s.OldestPost.Format("2006-01-02"), s.NewestPost.Format("2006-01-02"))
	}

	if len(s.TopThemes) > 0 {
		b.WriteString("Top themes:\n")
		for _, t := range s.TopThemes {
			fmt.Fprintf(&b, "  %-40s %d\n", t.Label, t.Count)
		}
	}
	if len(s.Competitors) > 0 {
		b.WriteString("Competitor mentions:\n")
		for _, t := range s.Competitors {
			fmt.Fprintf(&b, "  %-40s %d\n", t.Label, t.Count)
		}
	}

	if disabled := diagnostics.DisabledSources(); len(disabled) > 0 {
		fmt.Fprintf(&b, "Degraded: %d of %d sources disabled (%s)\n",
			len(disabled), len(diagnostics.Sources), strings.Join(disabled, ", "))
	}
	for _, p := range diagnostics.Providers {
		if p.RateLimited {
			fmt.Fprintf(&b, "Provider rate-limited: %s\n", p.Provider)
		}
	}
	if s.FallbackCount > 0 {
		fmt.Fprintf(&b, "Keyword fallback classified %d posts\n", s.FallbackCount)
	}

	return b.String()
}

func sortedTallies(counts map[string]int, limit int) []Tally {
	out := make([]Tally, 0, len(counts))
	for label, count := range counts {
		out = append(out, Tally{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
