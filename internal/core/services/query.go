package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// conversationPrefix starts every generated conversation id.
const conversationPrefix = "conv_"

// QueryService answers questions: route, retrieve, generate, evaluate, log.
type QueryService struct {
	router        driving.RouterService
	retriever     driving.RetrievalService
	llm           driven.LLMService
	prompts       driven.PromptStore
	conversations driven.ConversationStore
	requestLog    driven.RequestLogger
	evaluator     *Evaluator

	topK         int
	historyTurns int
	now          func() time.Time
}

// NewQueryService creates a new query service.
// llm may be nil; Ask then returns domain.ErrLLMUnavailable.
func NewQueryService(
	router driving.RouterService,
	retriever driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	evaluator *Evaluator,
) *QueryService {
	return &QueryService{
		router:       router,
		retriever:    retriever,
		llm:          llm,
		prompts:      prompts,
		evaluator:    evaluator,
		topK:         domain.DefaultTopK,
		historyTurns: domain.DefaultHistoryTurns,
		now:          time.Now,
	}
}

// SetConversationStore sets where conversation history is kept.
func (s *QueryService) SetConversationStore(store driven.ConversationStore) {
	s.conversations = store
}

// SetRequestLogger sets the request log.
func (s *QueryService) SetRequestLogger(log driven.RequestLogger) {
	s.requestLog = log
}

// SetTopK sets the number of chunks retrieved per question.
func (s *QueryService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// SetHistoryTurns sets how many prior messages accompany a question.
func (s *QueryService) SetHistoryTurns(n int) {
	if n >= 0 {
		s.historyTurns = n
	}
}

// Ask answers one question.
func (s *QueryService) Ask(ctx context.Context, q domain.Question) (*domain.Answer, error) {
	logger.Section("Ask")
	start := s.now()

	question := strings.TrimSpace(q.Text)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	convID := q.ConversationID
	if convID == "" {
		convID = NewConversationID()
	}

	route := s.router.Route(question)
	logger.Info("Classified %s -> %s", route.Classification, route.Model)

	results, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	history := s.history(ctx, convID)
	messages, err := s.buildMessages(question, results, history)
	if err != nil {
		return nil, err
	}

	gen, err := s.llm.Generate(ctx, route.Model, messages)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if s.conversations != nil {
		if err := s.conversations.Append(ctx, convID,
			domain.ChatMessage{Role: domain.RoleUser, Content: question},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: gen.Text},
		); err != nil {
			logger.Warn("Failed to record conversation %s: %v", convID, err)
		}
	}

	sources := domain.Sources(results)
	flags := s.evaluator.Evaluate(gen.Text, len(results), sources, route.Classification)
	latency := s.now().Sub(start).Milliseconds()

	s.logRequest(ctx, domain.RequestLog{
		Timestamp:      start.UTC(),
		ConversationID: convID,
		Query:          question,
		Classification: route.Classification,
		ModelUsed:      route.Model,
		TokensInput:    gen.Tokens.Input,
		TokensOutput:   gen.Tokens.Output,
		LatencyMS:      latency,
	})

	return &domain.Answer{
		Answer: gen.Text,
		Metadata: domain.AnswerMetadata{
			ModelUsed:       route.Model,
			Classification:  route.Classification,
			Tokens:          gen.Tokens,
			LatencyMS:       latency,
			ChunksRetrieved: len(results),
			EvaluatorFlags:  flags,
		},
		Sources:        sources,
		ConversationID: convID,
	}, nil
}

func (s *QueryService) history(ctx context.Context, convID string) []domain.ChatMessage {
	if s.conversations == nil || s.historyTurns == 0 {
		return nil
	}
	history, err := s.conversations.History(ctx, convID, s.historyTurns)
	if err != nil {
		logger.Warn("Failed to read conversation %s: %v", convID, err)
		return nil
	}
	return history
}

// buildMessages assembles system prompt, history and the context-wrapped question.
func (s *QueryService) buildMessages(
	question string, results []domain.RetrievalResult, history []domain.ChatMessage,
) ([]domain.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptSystem)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	template, err := s.prompts.Load(driven.PromptUserMessage)
	if err != nil {
		return nil, fmt.Errorf("load user message prompt: %w", err)
	}

	var passages string
	if len(results) == 0 {
		passages, err = s.prompts.Load(driven.PromptNoContext)
		if err != nil {
			return nil, fmt.Errorf("load no-context prompt: %w", err)
		}
	} else {
		passages = ContextBlock(results)
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(template, passages, question),
	})
	return messages, nil
}

func (s *QueryService) logRequest(ctx context.Context, record domain.RequestLog) {
	if s.requestLog == nil {
		return
	}
	if err := s.requestLog.Append(ctx, record); err != nil {
		logger.Warn("Failed to write request log: %v", err)
	}
}

// ContextBlock renders retrieved chunks as numbered, cited passages.
func ContextBlock(results []domain.RetrievalResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] Source: %s (page %d)\n%s", i+1, r.Source, r.Page, r.Text)
	}
	return b.String()
}

// NewConversationID returns "conv_" followed by 12 hex characters.
func NewConversationID() string {
	id := uuid.New()
	return conversationPrefix + strings.ReplaceAll(id.String(), "-", "")[:12]
}
