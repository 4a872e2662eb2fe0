package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
)

// Pullpush searches the Pullpush archive mirror. Least reliable of the four
// sources; it runs last and gets no per-request retries so a dead mirror
// burns through its failure budget quickly.
type Pullpush struct {
	baseURL  string
	maxPages int
	pageSize int
	http     *http.Client
}

// PullpushOption configures the adapter.
type PullpushOption func(*Pullpush)

// WithPullpushHTTPClient overrides the default http.Client.
func WithPullpushHTTPClient(hc *http.Client) PullpushOption {
	return func(p *Pullpush) {
		p.http = hc
	}
}

// NewPullpush creates the secondary-archive adapter.
func NewPullpush(baseURL string, opts ...PullpushOption) *Pullpush {
	p := &Pullpush{
		baseURL:  baseURL,
		maxPages: 5,
		pageSize: 100,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pullpush) Name() string { return "pullpush" }

// Search pages backwards through the archive by creation timestamp. The
// Pullpush API has no subreddit-scoped search worth using, so results are
// filtered to the container client-side.
func (p *Pullpush) Search(ctx context.Context, term, container string, window Window) ([]model.Post, error) {
	var posts []model.Post
	before := window.Before.Unix()
	after := window.After.Unix()

	for page := 0; page < p.maxPages; page++ {
		params := url.Values{}
		params.Set("q", term)
		params.Set("after", strconv.FormatInt(after, 10))
		params.Set("before", strconv.FormatInt(before, 10))
		params.Set("size", strconv.Itoa(p.pageSize))
		params.Set("sort", "desc")
		params.Set("sort_type", "created_utc")

		batch, err := p.fetchPage(ctx, params)
		if err != nil {
			if len(posts) > 0 {
				return posts, nil
			}
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for _, raw := range batch {
			if container != "" && !strings.EqualFold(raw.Subreddit, container) {
				continue
			}
			posts = append(posts, raw.toModel(p.Name()))
		}
		before = int64(batch[len(batch)-1].CreatedUTC) - 1

		if len(batch) < p.pageSize {
			break
		}
	}

	return posts, nil
}

func (p *Pullpush) fetchPage(ctx context.Context, params url.Values) ([]archivePost, error) {
	reqURL := p.baseURL + "/reddit/search/submission?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pullpush: create request")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, resilience.Unavailable(eris.Wrap(err, "pullpush: send request"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.Unavailable(eris.Wrap(err, "pullpush: read response"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.FromHTTPStatus(
			eris.Errorf("pullpush: unexpected status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}

	var result struct {
		Data []archivePost `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, resilience.SchemaError(eris.Wrap(err, "pullpush: unmarshal response"))
	}
	return result.Data, nil
}
