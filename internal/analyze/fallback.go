package analyze

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/mention-cli/internal/model"
)

// FallbackName marks judgments produced without any inference provider.
const FallbackName = "keyword_fallback"

// Default sentiment lexicons for the keyword fallback. Deliberately small:
// the fallback is a degraded-quality safety net, not a sentiment model.
var (
	positiveLexicon = []string{
		"love", "great", "amazing", "best", "awesome", "excellent",
		"recommend", "good", "fantastic", "happy", "satisfied", "smooth",
	}
	negativeLexicon = []string{
		"hate", "worst", "terrible", "bad", "awful", "scam", "fraud",
		"disappointed", "horrible", "poor", "waste", "trash", "bug",
		"crash", "slow", "stuck", "useless",
	}
)

// KeywordClassifier is the deterministic classifier used when every
// inference provider is exhausted. It never fails and runs in time
// proportional to the post text length.
type KeywordClassifier struct {
	positive []string
	negative []string
	folder   cases.Caser
}

// NewKeywordClassifier creates a classifier with the default lexicons.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		positive: positiveLexicon,
		negative: negativeLexicon,
		folder:   cases.Fold(),
	}
}

// Classify produces a judgment for one post from keyword heuristics alone.
func (k *KeywordClassifier) Classify(post model.Post, brand model.BrandConfig) model.Judgment {
	text := k.folder.String(post.Title + " " + post.Body)

	j := model.Judgment{
		Sentiment:    model.SentimentNeutral,
		Theme:        "general discussion",
		Summary:      truncate(post.Title, 100),
		ClassifiedBy: FallbackName,
	}

	j.Relevant = k.relevant(text, post, brand)
	if !j.Relevant {
		return j
	}

	pos, neg := 0, 0
	for _, w := range k.positive {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range k.negative {
		if strings.Contains(text, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		j.Sentiment = model.SentimentPositive
	case neg > pos:
		j.Sentiment = model.SentimentNegative
	}

	for _, c := range brand.Competitors {
		if c != "" && strings.Contains(text, k.folder.String(c)) {
			j.CompetitorMentions = append(j.CompetitorMentions, c)
		}
	}

	return j
}

// relevant checks for a product-term hit or a container hint match.
func (k *KeywordClassifier) relevant(foldedText string, post model.Post, brand model.BrandConfig) bool {
	for _, term := range brand.ProductTerms {
		if term != "" && strings.Contains(foldedText, k.folder.String(term)) {
			return true
		}
	}
	for _, hint := range brand.SubredditHints {
		if strings.EqualFold(post.Container, hint) {
			return true
		}
	}
	return false
}

// truncate shortens s to at most n runes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
