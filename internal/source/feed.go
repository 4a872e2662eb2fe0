package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
)

// Feed searches a subreddit through its RSS search feed. Feeds serve at
// most ~25 entries per request regardless of the query, so this source is
// bounded by construction; truncation is never an error, only transport
// failures are.
type Feed struct {
	baseURL   string
	userAgent string
	maxPosts  int
	parser    *gofeed.Parser
}

// NewFeed creates the RSS feed adapter.
func NewFeed(baseURL, userAgent string, maxPosts int) *Feed {
	if maxPosts <= 0 {
		maxPosts = 25
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: 30 * time.Second}
	return &Feed{
		baseURL:   baseURL,
		userAgent: userAgent,
		maxPosts:  maxPosts,
		parser:    parser,
	}
}

func (f *Feed) Name() string { return "feed" }

// Search fetches the subreddit's search feed and keeps entries inside the
// window. A single request, no pagination.
func (f *Feed) Search(ctx context.Context, term, container string, window Window) ([]model.Post, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q", term))
	params.Set("restrict_sr", "on")
	params.Set("sort", "new")
	feedURL := fmt.Sprintf("%s/r/%s/search.rss?%s", f.baseURL, container, params.Encode())

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, classifyFeedError(err)
	}

	var posts []model.Post
	for _, item := range feed.Items {
		if len(posts) >= f.maxPosts {
			break
		}
		if item.PublishedParsed == nil || !window.Contains(*item.PublishedParsed) {
			continue
		}

		author := ""
		if item.Author != nil {
			author = strings.TrimPrefix(item.Author.Name, "/u/")
		}

		// Feed entries carry no score or comment counts; those stay zero
		// and a higher-priority copy of the same post wins on dedup anyway.
		posts = append(posts, model.Post{
			ID:         feedEntryID(item),
			Title:      item.Title,
			Body:       item.Description,
			Container:  container,
			Author:     author,
			URL:        item.Link,
			Permalink:  item.Link,
			CreatedAt:  item.PublishedParsed.UTC(),
			SourceName: f.Name(),
		})
	}

	return posts, nil
}

// feedEntryID extracts the post ID from a feed entry GUID of the form
// "t3_<id>", falling back to the raw GUID or link.
func feedEntryID(item *gofeed.Item) string {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	return strings.TrimPrefix(id, "t3_")
}

func classifyFeedError(err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return resilience.FromHTTPStatus(eris.Wrap(err, "feed: fetch"), httpErr.StatusCode)
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return resilience.SchemaError(eris.Wrap(err, "feed: parse"))
	}
	return resilience.Unavailable(eris.Wrap(err, "feed: fetch"))
}
