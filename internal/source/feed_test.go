package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mention-cli/internal/resilience"
)

func rssDoc(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>search results</title>` + items + `</channel></rss>`
}

func rssItem(id, title string, published time.Time) string {
	return fmt.Sprintf(
		`<item><guid>t3_%s</guid><title>%s</title><link>https://reddit.com/r/india/comments/%s</link><pubDate>%s</pubDate><author>/u/someone</author></item>`,
		id, title, id, published.Format(time.RFC1123Z),
	)
}

func TestFeed_Search_ParsesAndFiltersWindow(t *testing.T) {
	now := time.Now().UTC()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/india/search.rss", r.URL.Path)
		assert.Equal(t, `"acme"`, r.URL.Query().Get("q"), "term is quoted for exact matching")
		assert.Equal(t, "on", r.URL.Query().Get("restrict_sr"))

		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssDoc(
			rssItem("aaa", "recent post", now.Add(-24*time.Hour))+
				rssItem("bbb", "ancient post", now.AddDate(0, 0, -200)),
		))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, "test-agent", 25)
	posts, err := f.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.NoError(t, err)
	require.Len(t, posts, 1, "entries outside the window are dropped")
	assert.Equal(t, "aaa", posts[0].ID, "t3_ prefix stripped from the GUID")
	assert.Equal(t, "india", posts[0].Container)
	assert.Equal(t, "feed", posts[0].SourceName)
}

func TestFeed_Search_CapsResults(t *testing.T) {
	now := time.Now().UTC()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		items := ""
		for i := 0; i < 10; i++ {
			items += rssItem(fmt.Sprintf("id%d", i), "post", now.Add(-time.Duration(i)*time.Hour))
		}
		fmt.Fprint(w, rssDoc(items))
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, "test-agent", 3)
	posts, err := f.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestFeed_Search_BlockedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, "test-agent", 25)
	_, err := f.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.Error(t, err)
	assert.True(t, resilience.IsBlocked(err))
}

func TestFeed_Search_NotAFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>captcha</body></html>")
	}))
	defer srv.Close()

	f := NewFeed(srv.URL, "test-agent", 25)
	_, err := f.Search(context.Background(), "acme", "india", LookbackWindow(90))

	require.Error(t, err)
	assert.True(t, resilience.IsSchemaError(err))
}

func TestFeedEntryID(t *testing.T) {
	assert.Equal(t, "abc", feedEntryID(&gofeed.Item{GUID: "t3_abc"}))
	assert.Equal(t, "raw-guid", feedEntryID(&gofeed.Item{GUID: "raw-guid"}))
	assert.Equal(t, "https://x", feedEntryID(&gofeed.Item{Link: "https://x"}))
}
