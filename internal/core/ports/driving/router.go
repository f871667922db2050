package driving

import "github.com/clearpath-labs/clearpath/internal/core/domain"

// RouterService labels queries and picks a model tier.
type RouterService interface {
	// Classify labels a query simple or complex.
	Classify(query string) domain.Classification

	// Route classifies a query and maps it to a model.
	Route(query string) domain.Route
}
