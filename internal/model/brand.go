package model

// BrandConfig is the read-only search configuration for one brand. The
// pipeline consumes it as an opaque input; storage and editing belong to
// the caller.
type BrandConfig struct {
	Name           string   `json:"name" yaml:"name"`
	Category       string   `json:"category" yaml:"category"`
	Description    string   `json:"description" yaml:"description"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	ProductTerms   []string `json:"product_terms" yaml:"product_terms"`
	Competitors    []string `json:"competitors" yaml:"competitors"`
	SubredditHints []string `json:"subreddit_hints" yaml:"subreddit_hints"`
}

// SearchTerms returns the query terms for this brand, falling back to the
// brand name when no keywords are configured.
func (b BrandConfig) SearchTerms() []string {
	if len(b.Keywords) > 0 {
		return b.Keywords
	}
	if b.Name != "" {
		return []string{b.Name}
	}
	return nil
}
