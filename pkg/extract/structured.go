package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/plateful/recipe-ingest/models"
)

// fromStructuredData maps an embedded schema.org Recipe object onto a
// candidate. Returns nil when no usable Recipe object exists; the caller
// falls through to the next strategy.
func fromStructuredData(page *models.FetchedPage) *models.CandidateRecipe {
	blob := page.Meta(models.MetaJSONLD, "structured_data")
	if blob == "" {
		return nil
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		return nil
	}

	obj := findRecipeObject(decoded)
	if obj == nil {
		return nil
	}

	candidate := &models.CandidateRecipe{
		SourceURL:    page.SourceURL,
		Title:        strings.TrimSpace(stringValue(obj["name"])),
		Description:  strings.TrimSpace(stringValue(obj["description"])),
		Ingredients:  stringList(obj["recipeIngredient"]),
		Instructions: instructionSteps(obj["recipeInstructions"]),
		PrepMinutes:  isoDurationMinutes(stringValue(obj["prepTime"])),
		CookMinutes:  isoDurationMinutes(stringValue(obj["cookTime"])),
		Servings:     yieldServings(obj["recipeYield"]),
		Cuisine:      firstOf(obj["recipeCuisine"]),
		Tags:         keywordTags(obj["keywords"]),
		ImageURL:     imageURL(obj["image"]),
	}

	if candidate.Title == "" {
		return nil
	}
	if len(candidate.Ingredients) == 0 && len(candidate.Instructions) == 0 {
		return nil
	}
	return candidate
}

// findRecipeObject walks arbitrarily nested ld+json (top-level arrays,
// @graph containers) for the first object whose @type is or contains
// "Recipe".
func findRecipeObject(node interface{}) map[string]interface{} {
	switch v := node.(type) {
	case []interface{}:
		for _, item := range v {
			if obj := findRecipeObject(item); obj != nil {
				return obj
			}
		}
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeObject(graph)
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return strings.Contains(v, "Recipe")
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.Contains(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// firstOf returns a string value directly, or the first element of an array.
func firstOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		if len(t) > 0 {
			return firstOf(t[0])
		}
	}
	return ""
}

func stringList(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// instructionSteps handles the step shapes seen in the wild: plain strings,
// HowToStep objects with a text field, and HowToSection containers.
func instructionSteps(v interface{}) []string {
	var out []string
	collectSteps(v, &out)
	return out
}

func collectSteps(v interface{}, out *[]string) {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*out = append(*out, s)
		}
	case []interface{}:
		for _, item := range t {
			collectSteps(item, out)
		}
	case map[string]interface{}:
		if text := strings.TrimSpace(stringValue(t["text"])); text != "" {
			*out = append(*out, text)
			return
		}
		// HowToSection: recurse into its element list.
		if elements, ok := t["itemListElement"]; ok {
			collectSteps(elements, out)
		}
	}
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// isoDurationMinutes converts an ISO-8601 duration like PT1H30M to minutes.
// Returns 0 for anything unparseable.
func isoDurationMinutes(s string) int {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + minutes
}

var firstNumberRe = regexp.MustCompile(`\d+`)

// yieldServings pulls an integer serving count out of recipeYield, which can
// be a number, a string like "4 servings", or an array of either.
func yieldServings(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if m := firstNumberRe.FindString(t); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []interface{}:
		for _, item := range t {
			if n := yieldServings(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

func keywordTags(v interface{}) []string {
	switch t := v.(type) {
	case string:
		var tags []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
		return tags
	case []interface{}:
		return stringList(t)
	}
	return nil
}

func imageURL(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		if len(t) > 0 {
			return imageURL(t[0])
		}
	case map[string]interface{}:
		return strings.TrimSpace(stringValue(t["url"]))
	}
	return ""
}
