package extract

import (
	"testing"

	"github.com/plateful/recipe-ingest/models"
)

func pageWithJSONLD(blob string) *models.FetchedPage {
	return &models.FetchedPage{
		SourceURL:  "https://example.com/recipe",
		Markdown:   "irrelevant",
		Metadata:   map[string]string{models.MetaJSONLD: blob},
		StatusCode: 200,
	}
}

func TestFromStructuredData_MapsRecipeFields(t *testing.T) {
	blob := `[{
		"@context": "https://schema.org",
		"@type": "Recipe",
		"name": "Lemon Tart",
		"description": "Sharp and sweet.",
		"recipeIngredient": ["3 lemons", "200g sugar", "1 pastry shell"],
		"recipeInstructions": [
			{"@type": "HowToStep", "text": "Juice the lemons."},
			"Whisk with sugar.",
			{"@type": "HowToSection", "itemListElement": [{"text": "Fill the shell and bake."}]}
		],
		"prepTime": "PT20M",
		"cookTime": "PT1H10M",
		"recipeYield": "8 slices",
		"recipeCuisine": ["French"],
		"keywords": "dessert, citrus",
		"image": {"url": "https://example.com/tart.jpg"}
	}]`

	c := fromStructuredData(pageWithJSONLD(blob))
	if c == nil {
		t.Fatal("fromStructuredData() = nil, want candidate")
	}
	if c.Title != "Lemon Tart" {
		t.Errorf("Title = %q", c.Title)
	}
	if len(c.Ingredients) != 3 {
		t.Errorf("Ingredients = %d items, want 3", len(c.Ingredients))
	}
	wantSteps := []string{"Juice the lemons.", "Whisk with sugar.", "Fill the shell and bake."}
	if len(c.Instructions) != len(wantSteps) {
		t.Fatalf("Instructions = %v, want %v", c.Instructions, wantSteps)
	}
	for i, want := range wantSteps {
		if c.Instructions[i] != want {
			t.Errorf("Instructions[%d] = %q, want %q", i, c.Instructions[i], want)
		}
	}
	if c.PrepMinutes != 20 {
		t.Errorf("PrepMinutes = %d, want 20", c.PrepMinutes)
	}
	if c.CookMinutes != 70 {
		t.Errorf("CookMinutes = %d, want 70", c.CookMinutes)
	}
	if c.Servings != 8 {
		t.Errorf("Servings = %d, want 8", c.Servings)
	}
	if c.Cuisine != "French" {
		t.Errorf("Cuisine = %q", c.Cuisine)
	}
	if len(c.Tags) != 2 || c.Tags[0] != "dessert" {
		t.Errorf("Tags = %v", c.Tags)
	}
	if c.ImageURL != "https://example.com/tart.jpg" {
		t.Errorf("ImageURL = %q", c.ImageURL)
	}
}

func TestFromStructuredData_GraphContainer(t *testing.T) {
	blob := `{"@graph": [
		{"@type": "WebPage", "name": "not it"},
		{"@type": ["Thing", "Recipe"], "name": "Graph Stew", "recipeIngredient": ["1 carrot"]}
	]}`
	c := fromStructuredData(pageWithJSONLD(blob))
	if c == nil {
		t.Fatal("fromStructuredData() = nil, want candidate from @graph")
	}
	if c.Title != "Graph Stew" {
		t.Errorf("Title = %q", c.Title)
	}
}

func TestFromStructuredData_NonRecipeIgnored(t *testing.T) {
	blob := `{"@type": "NewsArticle", "name": "Recipe for disaster", "articleBody": "..."}`
	if c := fromStructuredData(pageWithJSONLD(blob)); c != nil {
		t.Errorf("fromStructuredData() = %+v, want nil for non-Recipe type", c)
	}
}

func TestFromStructuredData_EmptyRecipeRejected(t *testing.T) {
	blob := `{"@type": "Recipe", "name": "Ghost Dish"}`
	if c := fromStructuredData(pageWithJSONLD(blob)); c != nil {
		t.Errorf("fromStructuredData() = %+v, want nil when both lists are empty", c)
	}
}

func TestFromStructuredData_MalformedJSON(t *testing.T) {
	if c := fromStructuredData(pageWithJSONLD(`{"@type": "Recipe"`)); c != nil {
		t.Errorf("fromStructuredData() = %+v, want nil for malformed blob", c)
	}
}

func TestISODurationMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"PT30M", 30},
		{"PT1H", 60},
		{"PT1H30M", 90},
		{"PT2H05M", 125},
		{"P1DT1H", 1500},
		{"", 0},
		{"half an hour", 0},
	}
	for _, tc := range cases {
		if got := isoDurationMinutes(tc.in); got != tc.want {
			t.Errorf("isoDurationMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestYieldServings(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{"4 servings", 4},
		{"Serves 6", 6},
		{float64(12), 12},
		{[]interface{}{"8", "8 servings"}, 8},
		{"a crowd", 0},
	}
	for _, tc := range cases {
		if got := yieldServings(tc.in); got != tc.want {
			t.Errorf("yieldServings(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
