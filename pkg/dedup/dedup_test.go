package dedup

import (
	"context"
	"testing"

	"github.com/plateful/recipe-ingest/models"
)

type fakeIndex struct {
	urls   map[string]*models.IngestedRecipeRef
	titles map[string][]string
}

func (f *fakeIndex) FindBySourceURL(ctx context.Context, sourceURL string) (*models.IngestedRecipeRef, error) {
	return f.urls[sourceURL], nil
}

func (f *fakeIndex) FindTitlesByChef(ctx context.Context, chefID string) ([]string, error) {
	return f.titles[chefID], nil
}

func TestCheck_ExactURLDuplicate(t *testing.T) {
	index := &fakeIndex{
		urls: map[string]*models.IngestedRecipeRef{
			"https://example.com/r/1": {SourceURL: "https://example.com/r/1"},
		},
	}
	d := New(index, DefaultSimilarityThreshold)

	err := d.Check(context.Background(), &models.CandidateRecipe{
		SourceURL: "https://example.com/r/1",
		Title:     "Anything At All",
	}, "chef-1")

	de, ok := AsDuplicateError(err)
	if !ok {
		t.Fatalf("Check() error = %v, want DuplicateError", err)
	}
	if de.Reason != models.ReasonDuplicateURL {
		t.Errorf("Reason = %s, want DUPLICATE_URL", de.Reason)
	}
}

func TestCheck_FuzzyTitleDuplicate(t *testing.T) {
	index := &fakeIndex{
		urls:   map[string]*models.IngestedRecipeRef{},
		titles: map[string][]string{"chef-1": {"Weeknight Lasagna", "Perfect Roast Chicken"}},
	}
	d := New(index, DefaultSimilarityThreshold)

	err := d.Check(context.Background(), &models.CandidateRecipe{
		SourceURL: "https://example.com/r/new",
		Title:     "Perfect Roast Chicken Recipe",
	}, "chef-1")

	de, ok := AsDuplicateError(err)
	if !ok {
		t.Fatalf("Check() error = %v, want DuplicateError", err)
	}
	if de.Reason != models.ReasonDuplicateTitle {
		t.Errorf("Reason = %s, want DUPLICATE_TITLE", de.Reason)
	}
	if de.Existing != "Perfect Roast Chicken" {
		t.Errorf("Existing = %q", de.Existing)
	}
}

func TestCheck_DistinctDishPasses(t *testing.T) {
	index := &fakeIndex{
		urls:   map[string]*models.IngestedRecipeRef{},
		titles: map[string][]string{"chef-1": {"Perfect Roast Chicken"}},
	}
	d := New(index, DefaultSimilarityThreshold)

	err := d.Check(context.Background(), &models.CandidateRecipe{
		SourceURL: "https://example.com/r/garlic",
		Title:     "Garlic Roast Chicken",
	}, "chef-1")
	if err != nil {
		t.Fatalf("Check() error = %v, want distinct dish accepted", err)
	}
}

func TestCheck_TitleScopeIsPerChef(t *testing.T) {
	index := &fakeIndex{
		urls:   map[string]*models.IngestedRecipeRef{},
		titles: map[string][]string{"other-chef": {"Perfect Roast Chicken"}},
	}
	d := New(index, DefaultSimilarityThreshold)

	err := d.Check(context.Background(), &models.CandidateRecipe{
		SourceURL: "https://example.com/r/2",
		Title:     "Perfect Roast Chicken",
	}, "chef-1")
	if err != nil {
		t.Fatalf("Check() error = %v, want other chefs' titles out of scope", err)
	}
}

func TestCheck_NoChefSkipsTitleCheck(t *testing.T) {
	index := &fakeIndex{
		urls:   map[string]*models.IngestedRecipeRef{},
		titles: map[string][]string{"": {"Perfect Roast Chicken"}},
	}
	d := New(index, DefaultSimilarityThreshold)

	err := d.Check(context.Background(), &models.CandidateRecipe{
		SourceURL: "https://example.com/orphan",
		Title:     "Perfect Roast Chicken",
	}, "")
	if err != nil {
		t.Fatalf("Check() error = %v, want title check skipped without a chef", err)
	}
}

func TestTitleSimilarity(t *testing.T) {
	cases := []struct {
		a, b    string
		atLeast float64
		below   float64
	}{
		{"Perfect Roast Chicken", "Perfect Roast Chicken", 1.0, 0},
		{"Perfect Roast Chicken", "perfect roast chicken", 1.0, 0},
		{"Perfect Roast Chicken", "Perfect Roast Chicken Recipe", 0.85, 0},
		{"Perfect Roast Chicken", "Garlic Roast Chicken", 0, 0.85},
		{"Tomato Soup", "Chocolate Cake", 0, 0.5},
	}
	for _, tc := range cases {
		sim := TitleSimilarity(tc.a, tc.b)
		if sim < 0 || sim > 1 {
			t.Errorf("TitleSimilarity(%q, %q) = %v, out of [0,1]", tc.a, tc.b, sim)
		}
		if tc.atLeast > 0 && sim < tc.atLeast {
			t.Errorf("TitleSimilarity(%q, %q) = %v, want >= %v", tc.a, tc.b, sim, tc.atLeast)
		}
		if tc.below > 0 && sim >= tc.below {
			t.Errorf("TitleSimilarity(%q, %q) = %v, want < %v", tc.a, tc.b, sim, tc.below)
		}
	}
}

func TestTitleSimilarity_EmptyTitles(t *testing.T) {
	if sim := TitleSimilarity("", ""); sim != 1.0 {
		t.Errorf("TitleSimilarity of two empty titles = %v, want 1.0", sim)
	}
}
