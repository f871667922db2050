package mcp

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.RetrievalResult
	err       error
	loadErr   error
	ready     bool
	lastQuery string
	lastTopK  int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

func (m *mockRetrievalService) EnsureLoaded(_ context.Context) error {
	return m.loadErr
}

func (m *mockRetrievalService) Reload(_ context.Context) error {
	return m.loadErr
}

func (m *mockRetrievalService) Ready() bool {
	return m.ready
}

// mockRouterService is a mock implementation of driving.RouterService.
type mockRouterService struct {
	route domain.Route
}

func (m *mockRouterService) Classify(_ string) domain.Classification {
	return m.route.Classification
}

func (m *mockRouterService) Route(_ string) domain.Route {
	return m.route
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer   *domain.Answer
	err      error
	question domain.Question
}

func (m *mockQueryService) Ask(_ context.Context, q domain.Question) (*domain.Answer, error) {
	m.question = q
	return m.answer, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status *domain.IndexStatus
	err    error
}

func (m *mockIndexService) BuildIndex(_ context.Context, _ bool) (*domain.BuildReport, error) {
	return &domain.BuildReport{}, m.err
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

func validPorts() *Ports {
	return &Ports{
		Retrieval: &mockRetrievalService{},
		Router:    &mockRouterService{},
	}
}
