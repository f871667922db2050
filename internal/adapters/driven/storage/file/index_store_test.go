package file

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-labs/clearpath/internal/bm25"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/tokenizer"
)

func testSnapshot(texts ...string) *domain.IndexSnapshot {
	tok := tokenizer.New(domain.TokenizerSettings{})
	chunks := make([]domain.Chunk, len(texts))
	corpus := make([][]string, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, Source: "14_Pricing.pdf", Page: i + 1, ChunkID: i}
		corpus[i] = tok.Tokenize(text)
	}
	return &domain.IndexSnapshot{
		Manifest: domain.Manifest{
			Version:       domain.IndexFormatVersion,
			CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			ChunkCount:    len(chunks),
			DocumentCount: 1,
			Fingerprint:   "abc123",
			Ranking:       bm25.DefaultParams(),
		},
		Chunks: chunks,
		Corpus: corpus,
		Index:  bm25.New(corpus, bm25.DefaultParams()),
	}
}

func defaultSnapshot() *domain.IndexSnapshot {
	return testSnapshot(
		"The Pro plan costs $49 per month",
		"Enterprise pricing is custom",
		"Gantt charts show timelines",
	)
}

func TestIndexStore_SaveAndLoad(t *testing.T) {
	store := NewIndexStore(filepath.Join(t.TempDir(), "index_store"))
	ctx := context.Background()
	want := defaultSnapshot()

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Chunks, got.Chunks)
	assert.Equal(t, want.Corpus, got.Corpus)
	assert.Equal(t, want.Manifest.Fingerprint, got.Manifest.Fingerprint)
	assert.True(t, want.Manifest.CreatedAt.Equal(got.Manifest.CreatedAt))

	terms := []string{"pro", "plan"}
	assert.Equal(t, want.Index.Scores(terms), got.Index.Scores(terms))
}

func TestIndexStore_WritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := NewIndexStore(dir)
	snapshot := defaultSnapshot()

	require.NoError(t, store.Save(context.Background(), snapshot))

	files := snapshot.Manifest.Files
	assert.Equal(t, domain.GenerationFiles(strconv.FormatInt(snapshot.Manifest.CreatedAt.UnixNano(), 10)), files)
	for _, name := range append(files.Names(), domain.ManifestFileName) {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestIndexStore_LoadAbsent(t *testing.T) {
	store := NewIndexStore(filepath.Join(t.TempDir(), "missing"))
	ctx := context.Background()

	snapshot, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	manifest, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, manifest)
	assert.False(t, store.Exists(ctx))
}

func TestIndexStore_MissingArtifactIsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewIndexStore(dir)
	ctx := context.Background()
	snapshot := defaultSnapshot()
	require.NoError(t, store.Save(ctx, snapshot))

	require.NoError(t, os.Remove(filepath.Join(dir, snapshot.Manifest.Files.Index)))

	assert.False(t, store.Exists(ctx))
	snapshot, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestIndexStore_Exists(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	ctx := context.Background()

	assert.False(t, store.Exists(ctx))
	require.NoError(t, store.Save(ctx, defaultSnapshot()))
	assert.True(t, store.Exists(ctx))
}

func TestIndexStore_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, dir string, files domain.ManifestFiles)
	}{
		{
			name: "manifest is not json",
			corrupt: func(t *testing.T, dir string, files domain.ManifestFiles) {
				writeFile(t, filepath.Join(dir, domain.ManifestFileName), "{not json")
			},
		},
		{
			name: "chunks are not json",
			corrupt: func(t *testing.T, dir string, files domain.ManifestFiles) {
				writeFile(t, filepath.Join(dir, files.Chunks), "[{")
			},
		},
		{
			name: "index is truncated",
			corrupt: func(t *testing.T, dir string, files domain.ManifestFiles) {
				writeFile(t, filepath.Join(dir, files.Index), "CP")
			},
		},
		{
			name: "corpus is garbage",
			corrupt: func(t *testing.T, dir string, files domain.ManifestFiles) {
				writeFile(t, filepath.Join(dir, files.Corpus), "nonsense")
			},
		},
		{
			name: "chunk list shorter than manifest",
			corrupt: func(t *testing.T, dir string, files domain.ManifestFiles) {
				writeFile(t, filepath.Join(dir, files.Chunks),
					`[{"text":"a","source":"x.pdf","page":1,"chunk_id":0}]`)
			},
		},
		{
			name: "unknown manifest version",
			corrupt: func(t *testing.T, dir string, files domain.ManifestFiles) {
				writeFile(t, filepath.Join(dir, domain.ManifestFileName), `{"version":99}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewIndexStore(dir)
			ctx := context.Background()
			saved := defaultSnapshot()
			require.NoError(t, store.Save(ctx, saved))

			tt.corrupt(t, dir, saved.Manifest.Files)

			snapshot, err := store.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrMalformedPersistedState)
			assert.Nil(t, snapshot)
		})
	}
}

func TestIndexStore_SaveRejectsMisalignedSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewIndexStore(dir)
	snapshot := defaultSnapshot()
	snapshot.Corpus = snapshot.Corpus[:1]

	err := store.Save(context.Background(), snapshot)

	assert.ErrorIs(t, err, domain.ErrMalformedPersistedState)
	_, statErr := os.Stat(filepath.Join(dir, domain.ManifestFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIndexStore_SaveReplacesPrevious(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, defaultSnapshot()))

	next := testSnapshot("Only one chunk now about refunds", "and a second about invoices")
	next.Manifest.Fingerprint = "def456"
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Chunks, 2)
	assert.Equal(t, "def456", got.Manifest.Fingerprint)
}

func TestIndexStore_SaveRemovesPreviousGeneration(t *testing.T) {
	dir := t.TempDir()
	store := NewIndexStore(dir)
	ctx := context.Background()
	first := defaultSnapshot()
	require.NoError(t, store.Save(ctx, first))

	second := testSnapshot("Refunds take five days")
	require.NoError(t, store.Save(ctx, second))

	assert.NotEqual(t, first.Manifest.Files, second.Manifest.Files)
	for _, name := range first.Manifest.Files.Names() {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}
	for _, name := range second.Manifest.Files.Names() {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestIndexStore_CancelledSaveKeepsPreviousSnapshot(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	require.NoError(t, store.Save(context.Background(), testSnapshot("alpha pricing details", "beta", "gamma")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	next := testSnapshot("zeta onboarding flow", "eta", "theta")
	next.Manifest.CreatedAt = next.Manifest.CreatedAt.Add(time.Hour)
	err := store.Save(ctx, next)
	require.ErrorIs(t, err, context.Canceled)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha pricing details", got.Chunks[0].Text)
	assert.Equal(t, []string{"alpha", "pricing", "details"}, got.Corpus[0])
	scores := got.Index.Scores([]string{"alpha"})
	assert.Greater(t, scores[0], 0.0)
}

func TestIndexStore_OrphanedArtifactsAreIgnoredThenPruned(t *testing.T) {
	dir := t.TempDir()
	store := NewIndexStore(dir)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, defaultSnapshot()))

	// Artifacts of a save that never reached its manifest.
	orphan := domain.GenerationFiles("1")
	writeFile(t, filepath.Join(dir, orphan.Chunks), `[{"text":"zeta onboarding flow","source":"x.pdf","page":1,"chunk_id":0}]`)
	writeFile(t, filepath.Join(dir, orphan.Index), "garbage")

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "The Pro plan costs $49 per month", got.Chunks[0].Text)

	next := testSnapshot("Refunds take five days")
	require.NoError(t, store.Save(ctx, next))
	for _, name := range []string{orphan.Chunks, orphan.Index} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}
}

func TestIndexStore_Location(t *testing.T) {
	assert.Equal(t, "index_store", NewIndexStore("index_store").Location())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
