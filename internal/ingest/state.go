package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/plateful/recipe-ingest/models"
)

// loadRunState reads a previous run's progress. A missing file is a fresh
// start, not an error.
func loadRunState(path string) (*models.RunState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &models.RunState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state := &models.RunState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

func saveRunState(path string, state *models.RunState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// filterProcessed drops URLs the state file already records, preserving
// input order.
func filterProcessed(urls []string, state *models.RunState) []string {
	if len(state.ProcessedURLs) == 0 {
		return urls
	}
	done := make(map[string]bool, len(state.ProcessedURLs))
	for _, u := range state.ProcessedURLs {
		done[u] = true
	}
	var remaining []string
	for _, u := range urls {
		if !done[u] {
			remaining = append(remaining, u)
		}
	}
	return remaining
}
