package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/plateful/recipe-ingest/models"
)

// ListActiveChefs returns every chef whose recipes may still be attributed.
func (s *Store) ListActiveChefs(ctx context.Context) ([]models.ChefRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT chef_id, name, website_domain, is_active
		FROM chefs WHERE is_active = 1 ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chefs: %w", err)
	}
	defer rows.Close()

	var chefs []models.ChefRecord
	for rows.Next() {
		var chef models.ChefRecord
		if err := rows.Scan(&chef.ID, &chef.Name, &chef.WebsiteDomain, &chef.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan chef: %w", err)
		}
		chefs = append(chefs, chef)
	}
	return chefs, rows.Err()
}

// AddChef registers a chef for domain attribution. The domain is stored
// lowercased so matching stays case-insensitive.
func (s *Store) AddChef(ctx context.Context, name, websiteDomain string) (*models.ChefRecord, error) {
	name = strings.TrimSpace(name)
	websiteDomain = strings.ToLower(strings.TrimSpace(websiteDomain))
	if name == "" || websiteDomain == "" {
		return nil, fmt.Errorf("chef name and website domain are required")
	}

	var existingID string
	err := s.QueryRowContext(ctx, `
		SELECT chef_id FROM chefs WHERE website_domain = ?
	`, websiteDomain).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("chef with domain %s already exists", websiteDomain)
	}

	chef := &models.ChefRecord{
		ID:            uuid.NewString(),
		Name:          name,
		WebsiteDomain: websiteDomain,
		IsActive:      true,
	}
	_, err = s.ExecContext(ctx, `
		INSERT INTO chefs (chef_id, name, website_domain, is_active)
		VALUES (?, ?, ?, 1)
	`, chef.ID, chef.Name, chef.WebsiteDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chef: %w", err)
	}
	return chef, nil
}
