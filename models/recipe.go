// Package models defines the data structures shared across the ingestion pipeline.
package models

// ExtractionMethod records which strategy produced a candidate recipe.
type ExtractionMethod string

const (
	MethodStructuredData    ExtractionMethod = "structured_data"
	MethodMarkdownHeuristic ExtractionMethod = "markdown_heuristic"
	MethodAIFallback        ExtractionMethod = "ai_fallback"
)

// MetaJSONLD is the well-known FetchedPage metadata key carrying the page's
// raw ld+json blobs, concatenated into a single JSON array.
const MetaJSONLD = "jsonld"

// FetchedPage is the normalized result of scraping one URL. It lives only for
// the duration of a single pipeline run and is never persisted.
type FetchedPage struct {
	SourceURL  string
	Markdown   string
	HTML       string
	Metadata   map[string]string
	StatusCode int
}

// HasContent reports whether the page carries anything an extractor can work
// with. A page with neither markdown nor HTML is a fetch failure.
func (p *FetchedPage) HasContent() bool {
	return p.Markdown != "" || p.HTML != ""
}

// Meta returns the first non-empty metadata value among the given keys.
func (p *FetchedPage) Meta(keys ...string) string {
	for _, k := range keys {
		if v := p.Metadata[k]; v != "" {
			return v
		}
	}
	return ""
}

// CandidateRecipe is an in-memory, not-yet-persisted structured recipe.
// Invariant: Title is non-empty and at least one of Ingredients/Instructions
// is non-empty; extractors return ErrNotARecipe instead of violating this.
type CandidateRecipe struct {
	SourceURL    string   `json:"source_url"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepMinutes  int      `json:"prep_minutes,omitempty"`
	CookMinutes  int      `json:"cook_minutes,omitempty"`
	Servings     int      `json:"servings,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`

	Method     ExtractionMethod `json:"extraction_method"`
	Confidence float64          `json:"confidence"`
}

// HasTag reports whether the candidate already carries the given tag.
func (c *CandidateRecipe) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
