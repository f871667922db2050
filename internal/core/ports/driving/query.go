package driving

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// QueryService answers questions from the indexed corpus.
type QueryService interface {
	// Ask routes, retrieves, generates and evaluates one question.
	Ask(ctx context.Context, q domain.Question) (*domain.Answer, error)
}
