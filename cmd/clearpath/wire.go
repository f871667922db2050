package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/clearpath-labs/clearpath/internal/adapters/driven/config/file"
	"github.com/clearpath-labs/clearpath/internal/adapters/driven/llm/openai"
	storagefile "github.com/clearpath-labs/clearpath/internal/adapters/driven/storage/file"
	"github.com/clearpath-labs/clearpath/internal/adapters/driven/storage/memory"
	"github.com/clearpath-labs/clearpath/internal/adapters/driven/storage/sqlite"
	"github.com/clearpath-labs/clearpath/internal/adapters/driving/cli"
	"github.com/clearpath-labs/clearpath/internal/connectors/filesystem"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/services"
	"github.com/clearpath-labs/clearpath/internal/logger"
	"github.com/clearpath-labs/clearpath/internal/normalisers"
	"github.com/clearpath-labs/clearpath/internal/postprocessors/chunker"
	"github.com/clearpath-labs/clearpath/internal/tokenizer"
)

// maxConversationMessages bounds each in-memory conversation.
const maxConversationMessages = 50

// bootstrap wires every service from the configuration file.
func bootstrap(_ context.Context, configPath string) (*cli.Services, error) {
	if err := file.LoadDotEnv(".env"); err != nil {
		logger.Warn("%v", err)
	}

	path := file.ResolvePath(configPath, ".")
	configStore, err := file.NewConfigStore(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		// Keep the settings command usable so the bad value can be fixed.
		logger.Warn("Invalid settings: %v", err)
		return &cli.Services{Settings: settingsService}, nil
	}
	logger.Debug("Config: %s, documents: %s, index: %s", path, settings.Paths.DocumentsDir, settings.Paths.IndexDir)

	registry := normalisers.DefaultRegistry()
	source := filesystem.New(settings.Paths.DocumentsDir, func(p string) bool {
		_, ok := registry.For(p)
		return ok
	})

	chunks, err := chunker.FromSettings(settings.Chunking)
	if err != nil {
		return nil, err
	}
	indexStore := storagefile.NewIndexStore(settings.Paths.IndexDir)

	retrieval := services.NewRetrievalService(indexStore, settings.Retrieval.TopK)
	index := services.NewIndexService(source, registry, indexStore, chunks, tokenizer.New(settings.Tokenizer))
	index.SetSwapper(retrieval)

	router := services.NewRouterService(settings.Router)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, err
	}

	var llm driven.LLMService
	if svc, err := openai.NewLLMService(openai.ConfigFromSettings(settings.LLM)); err != nil {
		logger.Debug("LLM disabled: %v", err)
	} else {
		llm = svc
	}

	query := services.NewQueryService(router, retrieval, llm, prompts, services.NewEvaluator(settings.Evaluator.InternalDocPrefixes))
	query.SetConversationStore(memory.NewConversationStore(maxConversationMessages))
	query.SetTopK(settings.Retrieval.TopK)
	query.SetHistoryTurns(settings.LLM.HistoryTurns)

	requestLog, closeLog, err := openRequestLog(settings)
	if err != nil {
		return nil, err
	}
	if requestLog != nil {
		query.SetRequestLogger(requestLog)
	}

	return &cli.Services{
		Index:        index,
		Retrieval:    retrieval,
		Router:       router,
		Query:        query,
		Settings:     settingsService,
		ResultAction: services.NewResultActionService(settings.Paths.DocumentsDir),
		RequestLog:   requestLog,
		Source:       source,
		Close: func() error {
			return errors.Join(closeLog(), source.Close())
		},
	}, nil
}

// openRequestLog opens the configured request log backend.
// It returns a nil logger when request logging is disabled.
func openRequestLog(settings *domain.Settings) (driven.RequestLogger, func() error, error) {
	noop := func() error { return nil }

	switch settings.RequestLog.Kind {
	case domain.RequestLogNone:
		return nil, noop, nil
	case domain.RequestLogSQLite:
		store, err := sqlite.NewStore(settings.Paths.LogDir)
		if err != nil {
			return nil, noop, fmt.Errorf("opening request log: %w", err)
		}
		return store, store.Close, nil
	default:
		log, err := storagefile.NewRequestLog(settings.Paths.LogDir)
		if err != nil {
			return nil, noop, fmt.Errorf("opening request log: %w", err)
		}
		return log, log.Close, nil
	}
}
