package research

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mention-cli/internal/analyze"
	"github.com/sells-group/mention-cli/internal/fetch"
	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
	"github.com/sells-group/mention-cli/internal/source"
)

// stubSource returns the same posts for every search task.
type stubSource struct {
	posts []model.Post
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Search(_ context.Context, _, container string, _ source.Window) ([]model.Post, error) {
	out := make([]model.Post, len(s.posts))
	copy(out, s.posts)
	for i := range out {
		out[i].Container = container
	}
	return out, nil
}

func testRunner(t *testing.T, posts []model.Post) *Runner {
	t.Helper()
	fetcher := fetch.NewOrchestrator(fetch.Config{
		CourtesyDelay: time.Microsecond,
		Containers:    []string{"india"},
	}, &stubSource{posts: posts})
	analyzer := analyze.NewOrchestrator(analyze.Config{
		BatchSize: 10,
		Backoff:   resilience.BackoffConfig{Initial: time.Millisecond, Max: time.Millisecond},
	}, nil)

	r, err := NewRunner(fetcher, analyzer)
	require.NoError(t, err)
	return r
}

func testBrand() model.BrandConfig {
	return model.BrandConfig{
		Name:         "Zesto",
		Keywords:     []string{"zesto"},
		ProductTerms: []string{"zesto"},
	}
}

func TestNewRunner_RequiresBothOrchestrators(t *testing.T) {
	_, err := NewRunner(nil, nil)
	assert.Error(t, err)
}

func TestRunner_Run_EndToEnd(t *testing.T) {
	posts := []model.Post{
		{ID: "p1", Title: "zesto is great", CreatedAt: time.Now().UTC().Add(-time.Hour)},
		{ID: "p2", Title: "unrelated", CreatedAt: time.Now().UTC().Add(-2 * time.Hour)},
	}

	r := testRunner(t, posts)
	progress := NewProgress(64)

	result, err := r.Run(context.Background(), testBrand(), progress)
	require.NoError(t, err)

	require.Len(t, result.Posts, 2, "every fetched post gets a judgment")
	assert.Equal(t, "Zesto", result.Brand)
	assert.Equal(t, 2, result.Diagnostics.FallbackCount, "no providers configured")
	require.Len(t, result.Diagnostics.Sources, 1)
	assert.Equal(t, "stub", result.Diagnostics.Sources[0].Source)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	progress.Close()
	var events int
	for range progress.Events() {
		events++
	}
	assert.Positive(t, events)
}

func TestRunner_Run_ReportsPhases(t *testing.T) {
	r := testRunner(t, []model.Post{{ID: "p1", CreatedAt: time.Now().UTC()}})

	progress := NewProgress(64)
	var phases []model.RunStatus
	progress.PhaseFunc = func(s model.RunStatus) {
		phases = append(phases, s)
	}

	_, err := r.Run(context.Background(), testBrand(), progress)
	require.NoError(t, err)

	assert.Equal(t, []model.RunStatus{model.RunStatusFetching, model.RunStatusAnalyzing}, phases)
}

func TestRunner_Run_RejectsEmptyBrand(t *testing.T) {
	r := testRunner(t, nil)

	_, err := r.Run(context.Background(), model.BrandConfig{}, nil)
	assert.Error(t, err)
}

func TestRunner_Run_NilProgress(t *testing.T) {
	r := testRunner(t, []model.Post{{ID: "p1", CreatedAt: time.Now().UTC()}})

	result, err := r.Run(context.Background(), testBrand(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Posts, 1)
}
