package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockDocumentSource implements driven.DocumentSource for testing.
type mockDocumentSource struct {
	docs    []domain.SourceDocument
	listErr error
}

func (m *mockDocumentSource) Root() string { return "/docs" }

func (m *mockDocumentSource) List(_ context.Context) ([]domain.SourceDocument, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockDocumentSource) Watch(_ context.Context) (<-chan domain.CorpusChange, error) {
	ch := make(chan domain.CorpusChange)
	close(ch)
	return ch, nil
}

func (m *mockDocumentSource) Close() error { return nil }

// mockExtractor returns canned pages keyed by file name.
type mockExtractor struct {
	pages map[string][]domain.Page
	errs  map[string]error
	calls atomic.Int32
}

func (m *mockExtractor) Name() string { return "mock" }

func (m *mockExtractor) SupportedExtensions() []string { return []string{".txt", ".pdf"} }

func (m *mockExtractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	return m.pages[name], nil
}

// mockRegistry implements driven.PageExtractorRegistry over one extractor.
type mockRegistry struct {
	extractor driven.PageExtractor
}

func (m *mockRegistry) Register(e driven.PageExtractor) { m.extractor = e }

func (m *mockRegistry) For(path string) (driven.PageExtractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range m.extractor.SupportedExtensions() {
		if ext == supported {
			return m.extractor, true
		}
	}
	return nil, false
}

func (m *mockRegistry) Extensions() []string { return m.extractor.SupportedExtensions() }

// mockIndexStore keeps the last saved snapshot in memory.
type mockIndexStore struct {
	mu       sync.Mutex
	snapshot *domain.IndexSnapshot
	saves    int
	saveErr  error
	loadErr  error
}

func (m *mockIndexStore) Save(_ context.Context, snapshot *domain.IndexSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshot = snapshot
	m.saves++
	return nil
}

func (m *mockIndexStore) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snapshot, nil
}

func (m *mockIndexStore) Exists(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot != nil
}

func (m *mockIndexStore) Manifest(_ context.Context) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, nil
	}
	manifest := m.snapshot.Manifest
	return &manifest, nil
}

func (m *mockIndexStore) Location() string { return ":memory:" }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	answer      string
	tokens      domain.TokenUsage
	generateErr error

	lastModel    string
	lastMessages []domain.ChatMessage
}

func (m *mockLLMService) Generate(
	_ context.Context, model string, messages []domain.ChatMessage,
) (*domain.Generation, error) {
	m.lastModel = model
	m.lastMessages = messages
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &domain.Generation{Text: m.answer, Tokens: m.tokens}, nil
}

func (m *mockLLMService) Close() error { return nil }

// mockPromptStore serves fixed prompts.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptSystem:      "SYSTEM",
		driven.PromptUserMessage: "CONTEXT:\n%s\nQUESTION: %s",
		driven.PromptNoContext:   "(none)",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockRequestLogger records appended entries.
type mockRequestLogger struct {
	mu        sync.Mutex
	records   []domain.RequestLog
	appendErr error
}

func (m *mockRequestLogger) Append(_ context.Context, record domain.RequestLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockRequestLogger) Recent(_ context.Context, limit int) ([]domain.RequestLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	return m.records[len(m.records)-limit:], nil
}

func (m *mockRequestLogger) Close() error { return nil }

// Ensure mocks implement the interfaces.
var (
	_ driven.DocumentSource        = (*mockDocumentSource)(nil)
	_ driven.PageExtractor         = (*mockExtractor)(nil)
	_ driven.PageExtractorRegistry = (*mockRegistry)(nil)
	_ driven.IndexStore            = (*mockIndexStore)(nil)
	_ driven.LLMService            = (*mockLLMService)(nil)
	_ driven.PromptStore           = (*mockPromptStore)(nil)
	_ driven.RequestLogger         = (*mockRequestLogger)(nil)
)
