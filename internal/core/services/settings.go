package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDocumentsDir     = "paths.documents_dir"
	keyIndexDir         = "paths.index_dir"
	keyLogDir           = "paths.log_dir"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyStemming         = "tokenizer.stemming"
	keyTopK             = "retrieval.top_k"
	keyLightModel       = "router.light_model"
	keyHeavyModel       = "router.heavy_model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMAPIKeyEnv     = "llm.api_key_env"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMTimeout       = "llm.timeout"
	keyLLMRPS           = "llm.requests_per_second"
	keyLLMHistoryTurns  = "llm.history_turns"
	keyServerAddr       = "server.addr"
	keyServerRPS        = "server.requests_per_second"
	keyRequestLogKind   = "request_log.kind"
	keyInternalPrefixes = "evaluator.internal_doc_prefixes"
)

// valueKind describes how a setting's string form is parsed.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settingKinds lists every key accepted by Set.
var settingKinds = map[string]valueKind{
	keyDocumentsDir:     kindString,
	keyIndexDir:         kindString,
	keyLogDir:           kindString,
	keyChunkSize:        kindInt,
	keyChunkOverlap:     kindInt,
	keyStemming:         kindBool,
	keyTopK:             kindInt,
	keyLightModel:       kindString,
	keyHeavyModel:       kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMAPIKeyEnv:     kindString,
	keyLLMTemperature:   kindFloat,
	keyLLMMaxTokens:     kindInt,
	keyLLMTimeout:       kindDuration,
	keyLLMRPS:           kindFloat,
	keyLLMHistoryTurns:  kindInt,
	keyServerAddr:       kindString,
	keyServerRPS:        kindFloat,
	keyRequestLogKind:   kindString,
	keyInternalPrefixes: kindList,
}

// SettingsService maps configuration keys onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings, falling back to defaults for
// unset keys. An invalid chunking configuration is an error.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Paths: domain.PathSettings{
			DocumentsDir: s.getString(keyDocumentsDir, defaults.Paths.DocumentsDir),
			IndexDir:     s.getString(keyIndexDir, defaults.Paths.IndexDir),
			LogDir:       s.getString(keyLogDir, defaults.Paths.LogDir),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Tokenizer: domain.TokenizerSettings{
			Stemming: s.getBool(keyStemming, defaults.Tokenizer.Stemming),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, defaults.Retrieval.TopK),
		},
		Router: domain.RouterSettings{
			LightModel: s.getString(keyLightModel, defaults.Router.LightModel),
			HeavyModel: s.getString(keyHeavyModel, defaults.Router.HeavyModel),
		},
		LLM: domain.LLMSettings{
			BaseURL:           s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			APIKeyEnv:         s.getString(keyLLMAPIKeyEnv, defaults.LLM.APIKeyEnv),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Timeout:           s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
			RequestsPerSecond: s.getFloat(keyLLMRPS, defaults.LLM.RequestsPerSecond),
			HistoryTurns:      s.getInt(keyLLMHistoryTurns, defaults.LLM.HistoryTurns),
		},
		Server: domain.ServerSettings{
			Addr:              s.getString(keyServerAddr, defaults.Server.Addr),
			RequestsPerSecond: s.getFloat(keyServerRPS, defaults.Server.RequestsPerSecond),
		},
		RequestLog: domain.RequestLogSettings{
			Kind: s.getRequestLogKind(defaults.RequestLog.Kind),
		},
		Evaluator: domain.EvaluatorSettings{
			InternalDocPrefixes: s.getList(keyInternalPrefixes, defaults.Evaluator.InternalDocPrefixes),
		},
	}

	// The key itself wins over the named environment variable.
	settings.LLM.APIKey = s.configStore.GetString(keyLLMAPIKey)
	if settings.LLM.APIKey == "" && settings.LLM.APIKeyEnv != "" {
		settings.LLM.APIKey = s.getenv(settings.LLM.APIKeyEnv)
	}

	if err := settings.Chunking.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set parses value for key, validates it and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.validate(key, parsed); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// validate checks a single parsed value against the rest of the settings.
func (s *SettingsService) validate(key string, value any) error {
	switch key {
	case keyChunkSize, keyChunkOverlap:
		current := s.currentChunking()
		if key == keyChunkSize {
			current.Size = value.(int)
		} else {
			current.Overlap = value.(int)
		}
		return current.Validate()
	case keyTopK, keyLLMMaxTokens:
		if value.(int) <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case keyLLMHistoryTurns:
		if value.(int) < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	case keyLLMTemperature:
		if t := value.(float64); t < 0 || t > 2 {
			return fmt.Errorf("%w: %s must be between 0 and 2", domain.ErrInvalidInput, key)
		}
	case keyLLMRPS, keyServerRPS:
		if value.(float64) < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	case keyRequestLogKind:
		if !domain.RequestLogKind(value.(string)).IsValid() {
			return fmt.Errorf("%w: invalid request log kind %q", domain.ErrInvalidInput, value)
		}
	case keyLightModel, keyHeavyModel, keyDocumentsDir, keyIndexDir:
		if value.(string) == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// currentChunking reads chunking settings without validating them.
func (s *SettingsService) currentChunking() domain.ChunkingSettings {
	defaults := domain.DefaultSettings()
	return domain.ChunkingSettings{
		Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
		Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
	}
}

// Keys returns the recognised setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		return splitList(value), nil
	default:
		return value, nil
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getRequestLogKind(defaultVal domain.RequestLogKind) domain.RequestLogKind {
	val := s.configStore.GetString(keyRequestLogKind)
	if val == "" {
		return defaultVal
	}
	kind := domain.RequestLogKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
