package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plateful/recipe-ingest/models"
)

// FindBySourceURL returns the existing ref for a URL, or nil when the URL
// has never been ingested.
func (s *Store) FindBySourceURL(ctx context.Context, sourceURL string) (*models.IngestedRecipeRef, error) {
	ref := &models.IngestedRecipeRef{}
	var chefID sql.NullString
	var createdAt string

	err := s.QueryRowContext(ctx, `
		SELECT recipe_id, source_url, title, chef_id, created_at
		FROM recipes WHERE source_url = ?
	`, sourceURL).Scan(&ref.ID, &ref.SourceURL, &ref.Title, &chefID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipe by URL: %w", err)
	}

	ref.ChefID = chefID.String
	if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		ref.CreatedAt = t
	}
	return ref, nil
}

// FindTitlesByChef returns every title recorded for one chef, in insertion
// order. The fuzzy dedup check runs over all of them.
func (s *Store) FindTitlesByChef(ctx context.Context, chefID string) ([]string, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT title FROM recipes WHERE chef_id = ? ORDER BY created_at, recipe_id
	`, chefID)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles for chef: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// Insert persists one candidate. INSERT OR IGNORE keeps concurrent inserts
// of the same URL safe; when the row already exists the existing ref is
// returned instead of an error.
func (s *Store) Insert(ctx context.Context, c *models.CandidateRecipe, chefID string) (*models.IngestedRecipeRef, error) {
	ingredients, err := json.Marshal(c.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructions, err := json.Marshal(c.Instructions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instructions: %w", err)
	}
	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	recipeID := uuid.NewString()
	result, err := s.ExecContext(ctx, `
		INSERT OR IGNORE INTO recipes (
			recipe_id, source_url, title, chef_id, description,
			ingredients, instructions, prep_minutes, cook_minutes, servings,
			cuisine, tags, image_url, extraction_method, confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, recipeID, c.SourceURL, c.Title, nullString(chefID), nullString(c.Description),
		string(ingredients), string(instructions), nullInt(c.PrepMinutes), nullInt(c.CookMinutes), nullInt(c.Servings),
		nullString(c.Cuisine), string(tags), nullString(c.ImageURL), string(c.Method), c.Confidence)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		// Lost a race on the unique source_url; hand back the winner.
		existing, err := s.FindBySourceURL(ctx, c.SourceURL)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("recipe insert ignored but no existing row for %s", c.SourceURL)
		}
		return existing, nil
	}

	return &models.IngestedRecipeRef{
		ID:        recipeID,
		SourceURL: c.SourceURL,
		Title:     c.Title,
		ChefID:    chefID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IncrementChefRecipeCount bumps the chef's cached recipe counter.
func (s *Store) IncrementChefRecipeCount(ctx context.Context, chefID string) error {
	_, err := s.ExecContext(ctx, `
		UPDATE chefs SET recipe_count = recipe_count + 1 WHERE chef_id = ?
	`, chefID)
	if err != nil {
		return fmt.Errorf("failed to increment recipe count: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
