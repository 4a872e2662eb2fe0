package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
)

// Official searches Reddit's own API through go-reddit. Reddit applies
// IP-based access control, so from server-hosted deployments this source
// frequently fails with 403s; those surface as Blocked so the orchestrator
// stops burning tasks on it.
type Official struct {
	client   *reddit.Client
	maxPages int
	pageSize int
}

// NewOfficial creates the Reddit search adapter. With empty credentials the
// client runs read-only against the public API.
func NewOfficial(clientID, clientSecret, username, password, userAgent string) (*Official, error) {
	var client *reddit.Client
	var err error

	if clientID != "" && clientSecret != "" {
		creds := reddit.Credentials{
			ID:       clientID,
			Secret:   clientSecret,
			Username: username,
			Password: password,
		}
		client, err = reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	} else {
		client, err = reddit.NewReadonlyClient(reddit.WithUserAgent(userAgent))
	}
	if err != nil {
		return nil, eris.Wrap(err, "official: create reddit client")
	}

	return &Official{
		client:   client,
		maxPages: 3,
		pageSize: 100,
	}, nil
}

func (o *Official) Name() string { return "official" }

// Search runs a quoted-phrase search restricted to one subreddit and filters
// results to the window client-side (Reddit's own time filter is coarse).
func (o *Official) Search(ctx context.Context, term, container string, window Window) ([]model.Post, error) {
	var posts []model.Post
	after := ""

	// Quoting the term avoids Reddit tokenizing multi-word brand names.
	query := fmt.Sprintf("%q", term)

	for page := 0; page < o.maxPages; page++ {
		opts := &reddit.ListPostSearchOptions{
			ListPostOptions: reddit.ListPostOptions{
				ListOptions: reddit.ListOptions{
					Limit: o.pageSize,
					After: after,
				},
				Time: "year",
			},
			Sort: "new",
		}

		results, resp, err := o.client.Subreddit.SearchPosts(ctx, query, container, opts)
		if err != nil {
			return nil, classifyRedditError(err)
		}

		if len(results) == 0 {
			break
		}

		for _, p := range results {
			if p.Created == nil || !window.Contains(p.Created.Time) {
				continue
			}
			posts = append(posts, redditPostToModel(p, o.Name()))
		}

		if resp == nil || resp.After == "" {
			break
		}
		after = resp.After
	}

	return posts, nil
}

func redditPostToModel(p *reddit.Post, sourceName string) model.Post {
	permalink := p.Permalink
	if permalink != "" && strings.HasPrefix(permalink, "/") {
		permalink = "https://reddit.com" + permalink
	}
	return model.Post{
		ID:           p.ID,
		Title:        p.Title,
		Body:         p.Body,
		Container:    p.SubredditName,
		Author:       p.Author,
		URL:          p.URL,
		Permalink:    permalink,
		Upvotes:      p.Score,
		CommentCount: p.NumberOfComments,
		CreatedAt:    p.Created.Time.UTC(),
		SourceName:   sourceName,
	}
}

// classifyRedditError maps go-reddit errors onto the failure taxonomy.
func classifyRedditError(err error) error {
	var rle *reddit.RateLimitError
	if errors.As(err, &rle) {
		return resilience.RateLimited(err)
	}

	var apiErr *reddit.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return resilience.FromHTTPStatus(err, apiErr.Response.StatusCode)
	}

	// Reddit's IP blocks sometimes close the connection before a status
	// line; those and all other transport errors read as unavailable.
	if strings.Contains(err.Error(), "403") {
		return resilience.Blocked(err, 403)
	}
	return resilience.Unavailable(err)
}
