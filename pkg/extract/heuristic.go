package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/plateful/recipe-ingest/models"
)

// Markdown heuristics. Each extractor below is a pure function over the raw
// markdown so it can be tested without any network or AI concern.

var (
	headingLineRe     = regexp.MustCompile(`^#{1,6}\s`)
	h1Re              = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	hrRe              = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})\s*$`)
	listItemRe        = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.*)$`)
	imageRe           = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)`)
	ingredientHeadRe  = regexp.MustCompile(`(?i)^#{1,6}\s*ingredients?\b`)
	instructionHeadRe = regexp.MustCompile(`(?i)^#{1,6}\s*(instructions?|directions?|method|steps?)\b`)
	timeRe            = regexp.MustCompile(`(?i)\b(prep|cook)(?:aration|ing)?\s*(?:time)?\s*:\s*(?:(\d+)\s*h(?:ou)?rs?\b)?\s*(?:(\d+)\s*m(?:in(?:ute)?s?)?\b)?`)
	servingsRe        = regexp.MustCompile(`(?i)\b(?:servings?|yields?|makes)\s*:?\s*(\d+)(?:\s*[-–]\s*\d+)?`)
)

// fromMarkdown builds a candidate from heading/list heuristics. Returns nil
// when no title is found or both ingredients and instructions are empty.
func fromMarkdown(page *models.FetchedPage) *models.CandidateRecipe {
	title := page.Meta("og:title", "title")
	if title == "" {
		if m := h1Re.FindStringSubmatch(page.Markdown); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	if title == "" {
		return nil
	}

	ingredients := ExtractIngredients(page.Markdown)
	instructions := ExtractInstructions(page.Markdown)
	if len(ingredients) == 0 && len(instructions) == 0 {
		return nil
	}

	prep, cook := ExtractTimes(page.Markdown)

	description := page.Meta("og:description", "description")
	if description == "" {
		description = firstParagraph(page.Markdown)
	}

	image := page.Meta("og:image")
	if image == "" {
		if m := imageRe.FindStringSubmatch(page.Markdown); m != nil {
			image = m[1]
		}
	}

	return &models.CandidateRecipe{
		SourceURL:    page.SourceURL,
		Title:        title,
		Description:  description,
		Ingredients:  ingredients,
		Instructions: instructions,
		PrepMinutes:  prep,
		CookMinutes:  cook,
		Servings:     ExtractServings(page.Markdown),
		ImageURL:     image,
	}
}

// sectionLines returns the lines between the first heading matching headRe
// and the next heading or horizontal rule.
func sectionLines(markdown string, headRe *regexp.Regexp) []string {
	lines := strings.Split(markdown, "\n")
	start := -1
	for i, line := range lines {
		if headRe.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var section []string
	for _, line := range lines[start:] {
		if headingLineRe.MatchString(line) || hrRe.MatchString(strings.TrimSpace(line)) {
			break
		}
		section = append(section, line)
	}
	return section
}

// ExtractIngredients collects list items under an "Ingredients" heading.
// Items of 2 characters or fewer are noise (stray bullets, "…" separators).
func ExtractIngredients(markdown string) []string {
	var out []string
	for _, line := range sectionLines(markdown, ingredientHeadRe) {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			item := strings.TrimSpace(m[1])
			if len(item) > 2 {
				out = append(out, item)
			}
		}
	}
	return out
}

// ExtractInstructions collects steps under an instructions-style heading:
// list items longer than 10 characters, or, when the section has no list at
// all, standalone prose lines longer than 20 characters.
func ExtractInstructions(markdown string) []string {
	section := sectionLines(markdown, instructionHeadRe)
	var items []string
	for _, line := range section {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			step := strings.TrimSpace(m[1])
			if len(step) > 10 {
				items = append(items, step)
			}
		}
	}
	if len(items) > 0 {
		return items
	}

	var prose []string
	for _, line := range section {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 20 {
			prose = append(prose, trimmed)
		}
	}
	return prose
}

// ExtractTimes regex-scans for "Prep Time: 15 min" / "Cook: 1 hour 20
// minutes" style annotations anywhere in the document.
func ExtractTimes(markdown string) (prepMinutes, cookMinutes int) {
	for _, m := range timeRe.FindAllStringSubmatch(markdown, -1) {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		total := hours*60 + minutes
		if total == 0 {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "prep":
			if prepMinutes == 0 {
				prepMinutes = total
			}
		case "cook":
			if cookMinutes == 0 {
				cookMinutes = total
			}
		}
	}
	return prepMinutes, cookMinutes
}

// ExtractServings finds "Servings: 4", "Yields: 6-8", "Makes 12" style
// annotations; ranges keep their lower bound.
func ExtractServings(markdown string) int {
	if m := servingsRe.FindStringSubmatch(markdown); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// firstParagraph returns the first prose line of 20+ characters after the
// first heading.
func firstParagraph(markdown string) string {
	lines := strings.Split(markdown, "\n")
	seenHeading := false
	for _, line := range lines {
		if headingLineRe.MatchString(line) {
			seenHeading = true
			continue
		}
		if !seenHeading {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if listItemRe.MatchString(line) || imageRe.MatchString(trimmed) {
			continue
		}
		if len(trimmed) >= 20 {
			return trimmed
		}
	}
	return ""
}
