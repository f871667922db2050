package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	RetrieveFunc     func(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)
	EnsureLoadedFunc func(ctx context.Context) error
	ReadyValue       bool
}

func (m *MockRetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, query, topK)
	}
	return nil, nil
}

func (m *MockRetrievalService) EnsureLoaded(ctx context.Context) error {
	if m.EnsureLoadedFunc != nil {
		return m.EnsureLoadedFunc(ctx)
	}
	return nil
}

func (m *MockRetrievalService) Reload(ctx context.Context) error {
	return m.EnsureLoaded(ctx)
}

func (m *MockRetrievalService) Ready() bool {
	return m.ReadyValue
}

// MockRouterService implements driving.RouterService for testing.
type MockRouterService struct{}

func (MockRouterService) Classify(string) domain.Classification {
	return domain.ClassificationSimple
}

func (MockRouterService) Route(string) domain.Route {
	return domain.Route{Classification: domain.ClassificationSimple, Model: domain.DefaultLightModel}
}

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	AskFunc func(ctx context.Context, q domain.Question) (*domain.Answer, error)
}

func (m *MockQueryService) Ask(ctx context.Context, q domain.Question) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, q)
	}
	return &domain.Answer{ConversationID: "conv_000000000001"}, nil
}

// MockIndexService implements driving.IndexService for testing.
type MockIndexService struct {
	BuildFunc  func(ctx context.Context, force bool) (*domain.BuildReport, error)
	StatusFunc func(ctx context.Context) (*domain.IndexStatus, error)
}

func (m *MockIndexService) BuildIndex(ctx context.Context, force bool) (*domain.BuildReport, error) {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, force)
	}
	return &domain.BuildReport{}, nil
}

func (m *MockIndexService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return &domain.IndexStatus{}, nil
}

var (
	_ driving.RetrievalService = (*MockRetrievalService)(nil)
	_ driving.RouterService    = MockRouterService{}
	_ driving.QueryService     = (*MockQueryService)(nil)
	_ driving.IndexService     = (*MockIndexService)(nil)
)

func validPorts() *Ports {
	return &Ports{
		Retrieval: &MockRetrievalService{},
		Router:    MockRouterService{},
		Query:     &MockQueryService{},
		Index:     &MockIndexService{},
	}
}

func TestNewPorts(t *testing.T) {
	retrieval := &MockRetrievalService{}
	router := MockRouterService{}

	ports := NewPorts(retrieval, router)

	require.NotNil(t, ports)
	assert.Equal(t, retrieval, ports.Retrieval)
	assert.Equal(t, router, ports.Router)
	assert.Nil(t, ports.Query)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{name: "all set", ports: validPorts()},
		{name: "required only", ports: NewPorts(&MockRetrievalService{}, MockRouterService{})},
		{name: "missing retrieval", ports: &Ports{Router: MockRouterService{}}, wantErr: ErrMissingRetrievalService},
		{name: "missing router", ports: &Ports{Retrieval: &MockRetrievalService{}}, wantErr: ErrMissingRouterService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
