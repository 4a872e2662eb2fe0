package model

import "time"

// Post is a single social post retrieved from one source.
// IDs are source-native; across the sources we query they refer to the same
// underlying post, so deduplication keys on ID alone.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body,omitempty"`
	Container    string    `json:"container"`
	Author       string    `json:"author,omitempty"`
	URL          string    `json:"url"`
	Permalink    string    `json:"permalink"`
	Upvotes      int       `json:"upvotes"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	SourceName   string    `json:"source_name"`
}

// Sentiment is the polarity assigned to a relevant post.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment normalizes a free-form sentiment label. Unknown labels
// become neutral rather than failing the post.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return Sentiment(s)
	default:
		return SentimentNeutral
	}
}

// Judgment is the classification attached to exactly one post.
type Judgment struct {
	Relevant           bool      `json:"relevant"`
	Sentiment          Sentiment `json:"sentiment"`
	Theme              string    `json:"theme"`
	Summary            string    `json:"summary"`
	CompetitorMentions []string  `json:"competitor_mentions,omitempty"`
	// ClassifiedBy names the provider that produced the judgment, or
	// "keyword_fallback" when the provider chain was exhausted.
	ClassifiedBy string `json:"classified_by"`
}

// JudgedPost pairs a post with its judgment.
type JudgedPost struct {
	Post     Post     `json:"post"`
	Judgment Judgment `json:"judgment"`
}
