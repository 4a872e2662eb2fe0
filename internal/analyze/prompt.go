package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mention-cli/internal/model"
	"github.com/sells-group/mention-cli/internal/resilience"
)

const systemPromptTemplate = `You are analyzing social media posts to determine whether each is about a specific brand, and if so, what the sentiment is.

Brand: %s
Description: %s
Category: %s
Known competitors: %s

The brand name may also be a common word. Only mark a post as relevant if it is actually discussing the brand or its products.

You will receive a JSON array of posts, each with an "id". Respond with ONLY a JSON array containing one object per input post, in any order, shaped like:
{"id": "<post id>", "relevant": <true|false>, "sentiment": "positive"|"negative"|"neutral", "theme": "<short label>", "summary": "<one line>", "competitor_mentions": ["<name>", ...]}

For irrelevant posts, set "relevant" to false and leave the other fields empty.`

// promptPost is the trimmed post shape sent to providers.
type promptPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Container string `json:"container"`
	Upvotes   int    `json:"upvotes"`
}

// renderSystemPrompt builds the per-run system preamble. It is identical
// across batches so providers that cache system prompts can reuse it.
func renderSystemPrompt(brand model.BrandConfig) string {
	competitors := "none known"
	if len(brand.Competitors) > 0 {
		competitors = strings.Join(brand.Competitors, ", ")
	}
	return fmt.Sprintf(systemPromptTemplate, brand.Name, brand.Description, brand.Category, competitors)
}

// renderBatchPrompt serializes one batch of posts as the user message.
func renderBatchPrompt(batch []model.Post) (string, error) {
	items := make([]promptPost, len(batch))
	for i, p := range batch {
		items[i] = promptPost{
			ID:        p.ID,
			Title:     truncate(p.Title, 500),
			Body:      truncate(p.Body, 1000),
			Container: p.Container,
			Upvotes:   p.Upvotes,
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", eris.Wrap(err, "analyze: marshal batch")
	}
	return string(data), nil
}

// providerJudgment is the wire shape providers return per post.
type providerJudgment struct {
	ID                 string   `json:"id"`
	Relevant           bool     `json:"relevant"`
	Sentiment          string   `json:"sentiment"`
	Theme              string   `json:"theme"`
	Summary            string   `json:"summary"`
	CompetitorMentions []string `json:"competitor_mentions"`
}

// parseBatchResponse maps the provider's raw text back onto the batch.
// Any post missing from the response makes the whole response a schema
// failure: a provider that drops posts cannot be trusted for the batch.
func parseBatchResponse(raw, providerName string, batch []model.Post) ([]model.Judgment, error) {
	text := cleanJSONArray(raw)

	var items []providerJudgment
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, resilience.SchemaError(eris.Wrapf(err, "analyze: %s returned unparseable output", providerName))
	}

	byID := make(map[string]providerJudgment, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	judgments := make([]model.Judgment, len(batch))
	for i, post := range batch {
		item, ok := byID[post.ID]
		if !ok {
			return nil, resilience.SchemaError(
				eris.Errorf("analyze: %s response missing post %s", providerName, post.ID),
			)
		}
		j := model.Judgment{
			Relevant:     item.Relevant,
			Sentiment:    model.SentimentNeutral,
			Theme:        item.Theme,
			Summary:      item.Summary,
			ClassifiedBy: providerName,
		}
		if item.Relevant {
			j.Sentiment = model.ParseSentiment(item.Sentiment)
			j.CompetitorMentions = item.CompetitorMentions
			if j.Theme == "" {
				j.Theme = "general discussion"
			}
		}
		judgments[i] = j
	}

	return judgments, nil
}

// cleanJSONArray extracts a JSON array from text that may contain markdown
// code fences or other wrapping.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first [ and last ].
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
