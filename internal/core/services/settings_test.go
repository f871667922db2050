package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/adapters/driven/storage/memory"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

func newTestSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.Router, settings.Router)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Paths, settings.Paths)
	assert.Equal(t, defaults.LLM.Timeout, settings.LLM.Timeout)
	assert.Equal(t, defaults.Evaluator.InternalDocPrefixes, settings.Evaluator.InternalDocPrefixes)
	assert.Equal(t, domain.RequestLogJSONL, settings.RequestLog.Kind)
	assert.Empty(t, settings.LLM.APIKey)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("chunking.size", 200)
	_ = store.Set("chunking.overlap", int64(20))
	_ = store.Set("tokenizer.stemming", true)
	_ = store.Set("router.heavy_model", "big-model")
	_ = store.Set("llm.temperature", 0.1)
	_ = store.Set("llm.timeout", "15s")
	_ = store.Set("request_log.kind", "sqlite")
	_ = store.Set("evaluator.internal_doc_prefixes", []any{"HR_"})

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.ChunkingSettings{Size: 200, Overlap: 20}, settings.Chunking)
	assert.True(t, settings.Tokenizer.Stemming)
	assert.Equal(t, "big-model", settings.Router.HeavyModel)
	assert.Equal(t, domain.DefaultLightModel, settings.Router.LightModel)
	assert.InDelta(t, 0.1, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 15*time.Second, settings.LLM.Timeout)
	assert.Equal(t, domain.RequestLogSQLite, settings.RequestLog.Kind)
	assert.Equal(t, []string{"HR_"}, settings.Evaluator.InternalDocPrefixes)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("request_log.kind", "kafka")
	_ = store.Set("llm.timeout", "soon")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.RequestLogJSONL, settings.RequestLog.Kind)
	assert.Equal(t, domain.DefaultLLMTimeout, settings.LLM.Timeout)
}

func TestSettingsService_Get_InvalidChunking(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("chunking.size", 50)
	_ = store.Set("chunking.overlap", 50)

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
}

func TestSettingsService_Get_APIKeyResolution(t *testing.T) {
	t.Run("from named environment variable", func(t *testing.T) {
		service, _ := newTestSettingsService(map[string]string{"GROQ_API_KEY": "gsk_env"})
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "gsk_env", settings.LLM.APIKey)
		assert.True(t, settings.LLM.IsConfigured())
	})

	t.Run("custom variable name", func(t *testing.T) {
		service, store := newTestSettingsService(map[string]string{"MY_KEY": "k2"})
		_ = store.Set("llm.api_key_env", "MY_KEY")
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "k2", settings.LLM.APIKey)
	})

	t.Run("explicit key wins", func(t *testing.T) {
		service, store := newTestSettingsService(map[string]string{"GROQ_API_KEY": "gsk_env"})
		_ = store.Set("llm.api_key", "explicit")
		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "explicit", settings.LLM.APIKey)
	})
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettingsService(nil)

	require.NoError(t, service.Set("retrieval.top_k", "8"))
	require.NoError(t, service.Set("tokenizer.stemming", "true"))
	require.NoError(t, service.Set("llm.temperature", "0.7"))
	require.NoError(t, service.Set("llm.timeout", "90s"))
	require.NoError(t, service.Set("evaluator.internal_doc_prefixes", "HR_, OPS_ ,"))

	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.True(t, store.GetBool("tokenizer.stemming"))
	assert.Equal(t, "1m30s", store.GetString("llm.timeout"))
	assert.Equal(t, []string{"HR_", "OPS_"}, store.GetStringSlice("evaluator.internal_doc_prefixes"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.InDelta(t, 0.7, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 90*time.Second, settings.LLM.Timeout)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"unknown key", "search.mode", "hybrid", domain.ErrInvalidInput},
		{"not a number", "retrieval.top_k", "many", domain.ErrInvalidInput},
		{"zero top k", "retrieval.top_k", "0", domain.ErrInvalidInput},
		{"overlap equals size", "chunking.overlap", "350", domain.ErrInvalidChunkConfig},
		{"size below overlap", "chunking.size", "40", domain.ErrInvalidChunkConfig},
		{"temperature too high", "llm.temperature", "3", domain.ErrInvalidInput},
		{"bad duration", "llm.timeout", "later", domain.ErrInvalidInput},
		{"bad request log kind", "request_log.kind", "kafka", domain.ErrInvalidInput},
		{"empty model", "router.light_model", "", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettingsService(nil)
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	keys := service.Keys()

	assert.Contains(t, keys, "chunking.size")
	assert.Contains(t, keys, "llm.api_key_env")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}
