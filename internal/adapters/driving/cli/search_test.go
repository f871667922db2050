package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "BM25")
	assert.Contains(t, searchCmd.Long, "page")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "What does Pro cost?")

	require.NoError(t, err)
	assert.Contains(t, out, "Route: simple -> "+domain.DefaultLightModel)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] 14_Pricing.pdf, page 2 (1.00)")
	assert.Contains(t, out, "The Pro plan costs $49 per month.")
	assert.Equal(t, 1, installed.retrieval.loads)
}

func TestSearchCmd_ExecutesWithShortLimitFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchLimit = domain.DefaultTopK }()

	_, err := execute(t, "search", "-n", "3", "another query")

	require.NoError(t, err)
	assert.Equal(t, 3, installed.retrieval.lastTopK)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	out, err := execute(t, "search", "--json", "test query")

	require.NoError(t, err)
	assert.Contains(t, out, `"source": "14_Pricing.pdf"`)
	assert.Contains(t, out, `"relevance_score": 1`)
	assert.NotContains(t, out, "Route:")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	retrievalService = nil

	_, err := execute(t, "search", "test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}

func TestSearchCmd_IndexUnavailable(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	installed.retrieval.LoadErr = domain.ErrIndexUnavailable

	_, err := execute(t, "search", "test")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	installed.retrieval.RetrieveFunc = func(context.Context, string, int) ([]domain.RetrievalResult, error) {
		return nil, errors.New("boom")
	}

	_, err := execute(t, "search", "test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchJSON_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchJSON(rootCmd, nil)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[]")
}

func TestOutputSearchTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchTable(rootCmd, []domain.RetrievalResult{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t\tc", 20))
	assert.Equal(t, "abcdefg...", snippet("abcdefghijklmnop", 10))
	assert.Equal(t, "", snippet("   ", 10))
}
