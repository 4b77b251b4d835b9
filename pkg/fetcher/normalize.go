package fetcher

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/plateful/recipe-ingest/models"
	"github.com/plateful/recipe-ingest/pkg/scrape"
)

// normalize flattens a scrape response into a FetchedPage. Pages arrive in
// very different states of completeness, so metadata gaps are backfilled
// from the raw HTML where possible.
func normalize(sourceURL string, resp *scrape.Response) *models.FetchedPage {
	page := &models.FetchedPage{
		SourceURL:  sourceURL,
		Markdown:   resp.Markdown,
		HTML:       resp.HTML,
		Metadata:   flattenMetadata(resp.Metadata),
		StatusCode: resp.StatusCode,
	}

	if page.HTML != "" {
		enrichFromHTML(page)
	}
	if page.Markdown == "" && page.HTML != "" {
		page.Markdown = markdownFromHTML(page.HTML)
	}
	if page.Metadata["title"] == "" || page.Metadata["description"] == "" {
		enrichFromReadability(page)
	}
	return page
}

// flattenMetadata stringifies the service's loosely-typed metadata values.
// Arrays keep their first element, matching how og: tags repeat.
func flattenMetadata(raw map[string]interface{}) map[string]string {
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case []interface{}:
			if len(v) > 0 {
				out[key] = fmt.Sprint(v[0])
			}
		case nil:
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

// enrichFromHTML recovers meta tags and ld+json blobs the scrape service
// didn't surface. This is metadata recovery only; content extraction stays
// in the extractor.
func enrichFromHTML(page *models.FetchedPage) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return
	}

	setIfEmpty := func(key, value string) {
		if page.Metadata[key] == "" && value != "" {
			page.Metadata[key] = strings.TrimSpace(value)
		}
	}

	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		if prop, ok := s.Attr("property"); ok {
			switch prop {
			case "og:title", "og:description", "og:image":
				setIfEmpty(prop, content)
			}
		}
		if name, ok := s.Attr("name"); ok && name == "description" {
			setIfEmpty("description", content)
		}
	})
	setIfEmpty("title", doc.Find("title").First().Text())

	if page.Metadata[models.MetaJSONLD] == "" {
		var blobs []string
		doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				blobs = append(blobs, text)
			}
		})
		if len(blobs) > 0 {
			page.Metadata[models.MetaJSONLD] = "[" + strings.Join(blobs, ",") + "]"
		}
	}
}

// enrichFromReadability fills remaining title/description/image gaps from
// the distilled article.
func enrichFromReadability(page *models.FetchedPage) {
	if page.HTML == "" {
		return
	}
	parsedURL, err := url.Parse(page.SourceURL)
	if err != nil {
		return
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(page.HTML), parsedURL)
	if err != nil {
		return
	}
	if page.Metadata["title"] == "" && article.Title != "" {
		page.Metadata["title"] = article.Title
	}
	if page.Metadata["description"] == "" && article.Excerpt != "" {
		page.Metadata["description"] = article.Excerpt
	}
	if page.Metadata["og:image"] == "" && article.Image != "" {
		page.Metadata["og:image"] = article.Image
	}
}

func markdownFromHTML(html string) string {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return ""
	}
	return markdown
}
