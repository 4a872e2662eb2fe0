package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
)

// ArcticShift searches the Arctic Shift archive. It is the most complete
// source and does not block datacenter IPs, so it runs first in the chain.
type ArcticShift struct {
	baseURL  string
	maxPages int
	pageSize int
	http     *http.Client
}

// ArcticShiftOption configures the adapter.
type ArcticShiftOption func(*ArcticShift)

// WithArcticShiftHTTPClient overrides the default http.Client.
func WithArcticShiftHTTPClient(hc *http.Client) ArcticShiftOption {
	return func(a *ArcticShift) {
		a.http = hc
	}
}

// WithArcticShiftMaxPages caps pagination per search task.
func WithArcticShiftMaxPages(n int) ArcticShiftOption {
	return func(a *ArcticShift) {
		a.maxPages = n
	}
}

// NewArcticShift creates the archive-search adapter.
func NewArcticShift(baseURL string, opts ...ArcticShiftOption) *ArcticShift {
	a := &ArcticShift{
		baseURL:  baseURL,
		maxPages: 5,
		pageSize: 100,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *ArcticShift) Name() string { return "arcticshift" }

// archivePost is the wire shape shared by the Arctic Shift and Pullpush APIs.
type archivePost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (p archivePost) toModel(sourceName string) model.Post {
	permalink := p.Permalink
	if permalink == "" {
		permalink = fmt.Sprintf("https://reddit.com/r/%s/comments/%s", p.Subreddit, p.ID)
	} else if permalink[0] == '/' {
		permalink = "https://reddit.com" + permalink
	}
	author := p.Author
	if author == "" {
		author = "[deleted]"
	}
	return model.Post{
		ID:           p.ID,
		Title:        p.Title,
		Body:         p.Selftext,
		Container:    p.Subreddit,
		Author:       author,
		URL:          p.URL,
		Permalink:    permalink,
		Upvotes:      p.Score,
		CommentCount: p.NumComments,
		CreatedAt:    time.Unix(int64(p.CreatedUTC), 0).UTC(),
		SourceName:   sourceName,
	}
}

// Search pages through the archive within the window. Full-text search on
// Arctic Shift requires a subreddit filter, which every task provides.
func (a *ArcticShift) Search(ctx context.Context, term, container string, window Window) ([]model.Post, error) {
	var posts []model.Post
	before := window.Before

	for page := 0; page < a.maxPages; page++ {
		params := url.Values{}
		params.Set("query", term)
		params.Set("subreddit", container)
		params.Set("after", window.After.Format("2006-01-02"))
		params.Set("limit", strconv.Itoa(a.pageSize))
		params.Set("sort", "desc")
		if page > 0 && !before.IsZero() {
			params.Set("before", before.Format("2006-01-02"))
		}

		batch, err := a.fetchPage(ctx, params)
		if err != nil {
			// A page-level failure after successful pages still returns
			// what was collected; the first page failing fails the task.
			if len(posts) > 0 {
				zap.L().Warn("arcticshift: pagination aborted",
					zap.String("container", container),
					zap.Int("page", page),
					zap.Error(err),
				)
				return posts, nil
			}
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for _, p := range batch {
			posts = append(posts, p.toModel(a.Name()))
		}
		before = time.Unix(int64(batch[len(batch)-1].CreatedUTC), 0).UTC()

		if len(batch) < a.pageSize {
			break
		}
	}

	return posts, nil
}

func (a *ArcticShift) fetchPage(ctx context.Context, params url.Values) ([]archivePost, error) {
	return resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts: 3,
		Backoff:     resilience.BackoffConfig{Initial: 2 * time.Second, Multiplier: 1.5},
		OnRetry:     resilience.RetryLogger(a.Name(), "search"),
	}, func(ctx context.Context) ([]archivePost, error) {
		reqURL := a.baseURL + "/api/posts/search?" + params.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "arcticshift: create request")
		}

		resp, err := a.http.Do(req)
		if err != nil {
			return nil, resilience.Unavailable(eris.Wrap(err, "arcticshift: send request"))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.Unavailable(eris.Wrap(err, "arcticshift: read response"))
		}

		if resp.StatusCode != http.StatusOK {
			return nil, resilience.FromHTTPStatus(
				eris.Errorf("arcticshift: unexpected status %d", resp.StatusCode),
				resp.StatusCode,
			)
		}

		var result struct {
			Data []archivePost `json:"data"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, resilience.SchemaError(eris.Wrap(err, "arcticshift: unmarshal response"))
		}
		return result.Data, nil
	})
}
