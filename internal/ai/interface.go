package ai

import (
	"context"
)

// CategoryClassifier picks a category for a free-text query when the keyword
// table has nothing to say. Implementations must only ever return one of the
// supplied slugs, or "" when none fits.
type CategoryClassifier interface {
	ClassifyCategory(ctx context.Context, query string, slugs []string) (string, error)
}
