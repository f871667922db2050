package services

import (
	"regexp"
	"strings"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// Ensure RouterService implements the interface.
var _ driving.RouterService = (*RouterService)(nil)

// complexWordCount is the word count at which a query is always complex.
const complexWordCount = 12

var (
	complexKeywords = regexp.MustCompile(`(?i)\b(` +
		`compare|comparison|difference|differences|versus|vs|` +
		`explain|elaborate|why|how does|how do|how can|how should|` +
		`pros and cons|trade-?off|recommend|evaluate|analyse|analyze|` +
		`step by step|in detail|describe the process|walk me through|` +
		`what are the implications|advantages|disadvantages` +
		`)\b`)

	subordinateMarkers = regexp.MustCompile(`(?i)\b(` +
		`because|although|however|whereas|nevertheless|` +
		`furthermore|moreover|consequently|if .{3,} then` +
		`)\b`)
)

// RouterService classifies queries with fixed rules and maps them to models.
type RouterService struct {
	settings domain.RouterSettings
}

// NewRouterService creates a new router service.
// Empty model names fall back to the defaults.
func NewRouterService(settings domain.RouterSettings) *RouterService {
	if settings.LightModel == "" {
		settings.LightModel = domain.DefaultLightModel
	}
	if settings.HeavyModel == "" {
		settings.HeavyModel = domain.DefaultHeavyModel
	}
	return &RouterService{settings: settings}
}

// Classify labels a query. The first matching rule wins:
// long queries, analytical keywords, several question marks, then
// subordinate clauses are complex; everything else is simple.
func (s *RouterService) Classify(query string) domain.Classification {
	switch {
	case len(strings.Fields(query)) >= complexWordCount:
		logger.Debug("Router: %d+ words", complexWordCount)
	case complexKeywords.MatchString(query):
		logger.Debug("Router: analytical keyword")
	case strings.Count(query, "?") >= 2:
		logger.Debug("Router: multi-part question")
	case subordinateMarkers.MatchString(query):
		logger.Debug("Router: subordinate clause")
	default:
		return domain.ClassificationSimple
	}
	return domain.ClassificationComplex
}

// Route classifies a query and picks its model tier.
func (s *RouterService) Route(query string) domain.Route {
	c := s.Classify(query)
	return domain.Route{Classification: c, Model: s.settings.ModelFor(c)}
}
