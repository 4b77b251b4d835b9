// Package aiextract implements the AI-extraction capability on Anthropic
// Claude. It is the pipeline's last-resort extractor: given raw page text it
// asks the model for a strict-JSON recipe and validates the answer before
// trusting it.
package aiextract

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/plateful/recipe-ingest/models"
)

const defaultModel = "claude-sonnet-4-20250514"

const systemPrompt = `You extract structured recipes from web page text.

Respond with a single JSON object and nothing else, matching exactly:
{
  "isValid": bool,          // false when the text holds no usable recipe
  "confidenceScore": float, // 0.0-1.0
  "title": string,
  "description": string,
  "ingredients": [string],  // free-text lines, in order
  "instructions": [string], // ordered steps
  "prepMinutes": int,       // 0 if unknown
  "cookMinutes": int,
  "servings": int,
  "cuisine": string,
  "tags": [string],
  "imageUrl": string
}

Set isValid to false for navigation pages, articles about food, ingredient
lists without a dish, or anything that is not one concrete recipe. Never
invent ingredients or steps that are not in the text.`

type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// New builds a Claude-backed extractor. An empty model falls back to the
// package default.
func New(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &Client{
		client:    &client,
		model:     model,
		maxTokens: 4096,
	}
}

// ExtractRecipe implements extract.AIExtractor. The caller is responsible
// for truncating rawText to its prompt budget.
func (c *Client) ExtractRecipe(ctx context.Context, rawText, sourceURL string, metadata map[string]string) (*models.CandidateRecipe, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Source URL: %s\n", sourceURL)
	if title := metadata["og:title"]; title != "" {
		fmt.Fprintf(&prompt, "Page title: %s\n", title)
	}
	prompt.WriteString("\nPage text:\n")
	prompt.WriteString(rawText)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.String())),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude extraction call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	return ParseRecipeJSON(response.String(), sourceURL)
}
