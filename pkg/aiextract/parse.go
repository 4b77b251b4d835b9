package aiextract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/plateful/recipe-ingest/models"
	"github.com/plateful/recipe-ingest/pkg/extract"
)

// recipePayload is the JSON shape the model is instructed to return. It is
// validated field by field; the model's output is never trusted blindly.
type recipePayload struct {
	IsValid         bool     `json:"isValid"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	PrepMinutes     int      `json:"prepMinutes"`
	CookMinutes     int      `json:"cookMinutes"`
	Servings        int      `json:"servings"`
	Cuisine         string   `json:"cuisine"`
	Tags            []string `json:"tags"`
	ImageURL        string   `json:"imageUrl"`
}

// ParseRecipeJSON turns a model response into a candidate. Unparseable
// output, isValid=false, or a payload violating the candidate invariant all
// collapse into extract.ErrNotARecipe.
func ParseRecipeJSON(response, sourceURL string) (*models.CandidateRecipe, error) {
	cleaned := stripCodeFences(response)

	var payload recipePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("unparseable model response for %s: %w", sourceURL, extract.ErrNotARecipe)
	}

	if !payload.IsValid {
		return nil, fmt.Errorf("model judged %s to hold no recipe: %w", sourceURL, extract.ErrNotARecipe)
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" || (len(payload.Ingredients) == 0 && len(payload.Instructions) == 0) {
		return nil, fmt.Errorf("model response for %s misses required fields: %w", sourceURL, extract.ErrNotARecipe)
	}

	confidence := payload.ConfidenceScore
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &models.CandidateRecipe{
		SourceURL:    sourceURL,
		Title:        payload.Title,
		Description:  strings.TrimSpace(payload.Description),
		Ingredients:  trimAll(payload.Ingredients),
		Instructions: trimAll(payload.Instructions),
		PrepMinutes:  payload.PrepMinutes,
		CookMinutes:  payload.CookMinutes,
		Servings:     payload.Servings,
		Cuisine:      strings.TrimSpace(payload.Cuisine),
		Tags:         trimAll(payload.Tags),
		ImageURL:     strings.TrimSpace(payload.ImageURL),
		Confidence:   confidence,
	}, nil
}

// stripCodeFences removes ```json fences the model sometimes wraps its
// answer in, then isolates the outermost JSON object.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func trimAll(in []string) []string {
	var out []string
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
