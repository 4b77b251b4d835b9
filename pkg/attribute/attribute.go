// Package attribute assigns a scraped recipe to a known content owner by
// matching the source URL's domain against each chef's website domain.
package attribute

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/plateful/recipe-ingest/models"
)

// ErrNoMatch means no active chef's domain matches the source URL. Whether
// that skips the URL or persists an orphan recipe is the orchestrator's
// run-mode decision.
var ErrNoMatch = errors.New("no chef matches source domain")

// ByDomain returns the first active chef whose registrable domain matches
// the source host. Subdomains match (blog.example.com matches example.com),
// and list order decides ties, so callers should pass a stable order.
func ByDomain(sourceURL string, chefs []models.ChefRecord) (*models.ChefRecord, error) {
	sourceHost := normalizeHost(sourceURL)
	if sourceHost == "" {
		return nil, fmt.Errorf("%s: %w", sourceURL, ErrNoMatch)
	}

	for i := range chefs {
		chef := &chefs[i]
		if !chef.IsActive || chef.WebsiteDomain == "" {
			continue
		}
		chefHost := normalizeHost(chef.WebsiteDomain)
		if chefHost == "" {
			continue
		}
		if sourceHost == chefHost || strings.Contains(sourceHost, chefHost) {
			return chef, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", sourceHost, ErrNoMatch)
}

// normalizeHost extracts a comparable host from a URL or bare domain,
// stripping scheme, port, and a leading www.
func normalizeHost(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}

	host := raw
	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = parsed.Host
	} else if idx := strings.IndexAny(raw, "/?"); idx >= 0 {
		// Bare domain with a path tacked on.
		host = raw[:idx]
	}

	if idx := strings.LastIndex(host, ":"); idx >= 0 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
