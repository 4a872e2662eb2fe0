package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mention-cli/internal/resilience"
)

func TestPullpush_Search_FiltersContainerClientSide(t *testing.T) {
	now := time.Now().UTC()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reddit/search/submission", r.URL.Path)
		assert.Equal(t, "acme", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.URL.Query().Get("after"))
		assert.NotEmpty(t, r.URL.Query().Get("before"))

		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": "m1", "title": "hit", "subreddit": "India", "created_utc": float64(now.Add(-time.Hour).Unix())},
			{"id": "m2", "title": "miss", "subreddit": "technology", "created_utc": float64(now.Add(-2 * time.Hour).Unix())},
		}})
	}))
	defer srv.Close()

	p := NewPullpush(srv.URL)
	posts, err := p.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "m1", posts[0].ID)
	assert.Equal(t, "pullpush", posts[0].SourceName)
}

func TestPullpush_Search_NoRetryOnFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPullpush(srv.URL)
	_, err := p.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.Error(t, err)
	assert.Equal(t, resilience.KindUnavailable, resilience.KindOf(err))
	assert.Equal(t, 1, calls, "the least reliable source gets no retries")
}

func TestPullpush_Search_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewPullpush(srv.URL)
	_, err := p.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.Error(t, err)
	assert.True(t, resilience.IsRateLimited(err))
}

func TestPullpush_Search_EmptyResultEndsPagination(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	p := NewPullpush(srv.URL)
	posts, err := p.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 1, calls)
}
