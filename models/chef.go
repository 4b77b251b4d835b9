package models

import "time"

// ChefRecord identifies a known content owner. The pipeline only reads these;
// the directory itself is maintained by the CLI layer.
type ChefRecord struct {
	ID            string `json:"chef_id"`
	Name          string `json:"name"`
	WebsiteDomain string `json:"website_domain"`
	IsActive      bool   `json:"is_active"`
}

// IngestedRecipeRef is the persisted footprint of one ingested recipe, used
// for dedup lookups and recorded on insert. SourceURL is unique in the store.
type IngestedRecipeRef struct {
	ID        string
	SourceURL string
	Title     string
	ChefID    string
	CreatedAt time.Time
}
