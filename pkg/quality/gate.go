// Package quality holds the minimum-content gate separating plausible
// recipes from noise. Deeper corruption checks belong to a post-ingestion
// audit, not this gate.
package quality

import (
	"errors"
	"fmt"

	"github.com/plateful/recipe-ingest/models"
)

// ValidationError carries the machine-readable rejection reason.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("quality gate rejected candidate (%s): %s", e.Reason, e.Detail)
}

// AsValidationError unwraps err into a ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Gate applies the configured thresholds.
type Gate struct {
	MinTitleLength  int
	MinIngredients  int
	MinInstructions int
}

// NewGate returns a gate with the documented defaults.
func NewGate() Gate {
	return Gate{MinTitleLength: 5, MinIngredients: 3, MinInstructions: 2}
}

// Validate accepts or rejects a candidate. A candidate passes on either a
// sufficient ingredient list or a sufficient instruction list; it does not
// need both.
func (g Gate) Validate(c *models.CandidateRecipe) error {
	if len(c.Title) < g.MinTitleLength {
		return &ValidationError{
			Reason: models.ReasonTitleTooShort,
			Detail: fmt.Sprintf("title %q is shorter than %d characters", c.Title, g.MinTitleLength),
		}
	}
	if len(c.Ingredients) < g.MinIngredients && len(c.Instructions) < g.MinInstructions {
		return &ValidationError{
			Reason: models.ReasonInsufficientContent,
			Detail: fmt.Sprintf("%d ingredients and %d instructions are below thresholds (%d/%d)",
				len(c.Ingredients), len(c.Instructions), g.MinIngredients, g.MinInstructions),
		}
	}
	return nil
}
