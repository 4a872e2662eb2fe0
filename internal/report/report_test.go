package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mention-cli/internal/model"
)

func judged(id, container string, relevant bool, sentiment model.Sentiment, theme string, created time.Time) model.JudgedPost {
	return model.JudgedPost{
		Post: model.Post{ID: id, Container: container, CreatedAt: created},
		Judgment: model.Judgment{
			Relevant:  relevant,
			Sentiment: sentiment,
			Theme:     theme,
		},
	}
}

func TestBuild_TalliesRelevantOnly(t *testing.T) {
	now := time.Now().UTC()
	posts := []model.JudgedPost{
		judged("a", "india", true, model.SentimentPositive, "pricing", now.Add(-time.Hour)),
		judged("b", "india", true, model.SentimentNegative, "Pricing", now.Add(-2*time.Hour)),
		judged("c", "gadgets", true, model.SentimentNeutral, "support", now.Add(-3*time.Hour)),
		judged("d", "india", false, model.SentimentNeutral, "", now.Add(-100*time.Hour)),
	}

	s := Build("Zesto", posts, model.RunDiagnostics{FallbackCount: 2})

	assert.Equal(t, 4, s.TotalPosts)
	assert.Equal(t, 3, s.RelevantPosts)
	assert.Equal(t, 1, s.Positive)
	assert.Equal(t, 1, s.Negative)
	assert.Equal(t, 1, s.Neutral)
	assert.Equal(t, 2, s.FallbackCount)

	// Theme labels are case-folded before counting.
	require.NotEmpty(t, s.TopThemes)
	assert.Equal(t, 2, s.TopThemes[0].Count)

	require.Len(t, s.ByContainer, 2)
	assert.Equal(t, Tally{Label: "india", Count: 2}, s.ByContainer[0])

	// The irrelevant post still moves the date range.
	assert.Equal(t, now.Add(-100*time.Hour).Truncate(time.Second).Unix(), s.OldestPost.Unix())
}

func TestBuild_CompetitorCounts(t *testing.T) {
	posts := []model.JudgedPost{
		{Post: model.Post{ID: "a"}, Judgment: model.Judgment{Relevant: true, CompetitorMentions: []string{"Rivalo", "PayFast"}}},
		{Post: model.Post{ID: "b"}, Judgment: model.Judgment{Relevant: true, CompetitorMentions: []string{"Rivalo"}}},
	}

	s := Build("Zesto", posts, model.RunDiagnostics{})

	require.Len(t, s.Competitors, 2)
	assert.Equal(t, Tally{Label: "Rivalo", Count: 2}, s.Competitors[0])
}

func TestBuild_Empty(t *testing.T) {
	s := Build("Zesto", nil, model.RunDiagnostics{})

	assert.Zero(t, s.TotalPosts)
	assert.Empty(t, s.TopThemes)
	assert.True(t, s.OldestPost.IsZero())
}

func TestRender_IncludesDegradation(t *testing.T) {
	s := Summary{Brand: "Zesto", TotalPosts: 10, RelevantPosts: 4, Positive: 2, Negative: 1, Neutral: 1, FallbackCount: 3}
	diags := model.RunDiagnostics{
		Sources: []model.SourceDiagnostic{
			{Source: "arcticshift"},
			{Source: "official", Disabled: true, DisabledReason: "access blocked"},
		},
		Providers: []model.ProviderDiagnostic{
			{Provider: "groq", RateLimited: true},
			{Provider: "cerebras"},
		},
	}

	out := Render(s, diags)

	assert.Contains(t, out, "Brand research: Zesto")
	assert.Contains(t, out, "10 total, 4 relevant")
	assert.Contains(t, out, "Degraded: 1 of 2 sources disabled (official)")
	assert.Contains(t, out, "Provider rate-limited: groq")
	assert.Contains(t, out, "Keyword fallback classified 3 posts")
	assert.NotContains(t, out, "cerebras")
}

func TestSortedTallies_OrderAndLimit(t *testing.T) {
	out := sortedTallies(map[string]int{"c": 1, "a": 3, "b": 3, "d": 2}, 3)

	assert.Equal(t, []Tally{
		{Label: "a", Count: 3},
		{Label: "b", Count: 3},
		{Label: "d", Count: 2},
	}, out)
}
