// Package file persists the index snapshot and the request log as plain files.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/clearpath-labs/clearpath/internal/bm25"
	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
	"github.com/clearpath-labs/clearpath/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps one snapshot in a directory: the chunk list as JSON, the
// ranking index and tokenized corpus as binary, and a manifest written last.
type IndexStore struct {
	dir string
}

// NewIndexStore creates a store rooted at dir.
func NewIndexStore(dir string) *IndexStore {
	return &IndexStore{dir: dir}
}

// Location returns the store directory.
func (s *IndexStore) Location() string {
	return s.dir
}

// Save writes the artifacts of a new generation through temp files and
// renames, then points the manifest at them. The previous generation stays
// referenced until the manifest rename, and is removed afterwards. Save
// records the written artifact names in snapshot.Manifest.
func (s *IndexStore) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	ix, ok := snapshot.Index.(*bm25.Index)
	if !ok {
		return fmt.Errorf("%w: unsupported ranking index %T", domain.ErrInvalidInput, snapshot.Index)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	files := s.nextGeneration(snapshot.Manifest.CreatedAt)
	steps := []struct {
		name  string
		write func(io.Writer) error
	}{
		{files.Chunks, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot.Chunks)
		}},
		{files.Index, ix.Encode},
		{files.Corpus, func(w io.Writer) error {
			return bm25.EncodeCorpus(w, snapshot.Corpus)
		}},
	}
	for _, step := range steps {
		if err := writeAtomic(filepath.Join(s.dir, step.name), step.write); err != nil {
			s.remove(files.Names())
			return fmt.Errorf("writing %s: %w", step.name, err)
		}
		logger.Debug("Wrote %s", step.name)
	}

	manifest := snapshot.Manifest
	manifest.Files = files
	manifest.ChunkCount = len(snapshot.Chunks)
	err := writeAtomic(filepath.Join(s.dir, domain.ManifestFileName), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	})
	if err != nil {
		s.remove(files.Names())
		return fmt.Errorf("writing manifest: %w", err)
	}
	snapshot.Manifest = manifest

	s.pruneGenerations(files)
	return nil
}

// nextGeneration picks artifact names derived from createdAt that no file in
// the store uses yet.
func (s *IndexStore) nextGeneration(createdAt time.Time) domain.ManifestFiles {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	base := strconv.FormatInt(createdAt.UnixNano(), 10)
	generation := base
	for n := 1; ; n++ {
		files := domain.GenerationFiles(generation)
		if !slices.ContainsFunc(files.Names(), func(name string) bool {
			return fileExists(filepath.Join(s.dir, name))
		}) {
			return files
		}
		generation = base + "-" + strconv.Itoa(n)
	}
}

// pruneGenerations removes artifacts that the current manifest does not
// reference, including files left by interrupted saves.
func (s *IndexStore) pruneGenerations(current domain.ManifestFiles) {
	keep := current.Names()
	for _, pattern := range domain.GenerationFiles("*").Names() {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if slices.Contains(keep, filepath.Base(path)) {
				continue
			}
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove old index artifact %s: %v", path, err)
				continue
			}
			logger.Debug("Removed %s", filepath.Base(path))
		}
	}
}

func (s *IndexStore) remove(names []string) {
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove %s: %v", name, err)
		}
	}
}

// Load reads a complete snapshot. A missing manifest or artifact is
// reported as absent (nil, nil); undecodable or inconsistent artifacts
// return domain.ErrMalformedPersistedState.
func (s *IndexStore) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	manifest, err := s.Manifest(ctx)
	if err != nil || manifest == nil {
		return nil, err
	}
	if manifest.Version != domain.IndexFormatVersion {
		return nil, fmt.Errorf("%w: manifest version %d, expected %d",
			domain.ErrMalformedPersistedState, manifest.Version, domain.IndexFormatVersion)
	}
	files := manifest.Files
	for _, name := range files.Names() {
		if name == "" || !fileExists(filepath.Join(s.dir, name)) {
			logger.Debug("Index artifact %q missing", name)
			return nil, nil
		}
	}

	var chunks []domain.Chunk
	if err := readFile(filepath.Join(s.dir, files.Chunks), func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&chunks)
	}); err != nil {
		return nil, malformed(files.Chunks, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ix *bm25.Index
	if err := readFile(filepath.Join(s.dir, files.Index), func(r io.Reader) error {
		var derr error
		ix, derr = bm25.Decode(r)
		return derr
	}); err != nil {
		return nil, malformed(files.Index, err)
	}

	var corpus [][]string
	if err := readFile(filepath.Join(s.dir, files.Corpus), func(r io.Reader) error {
		var derr error
		corpus, derr = bm25.DecodeCorpus(r)
		return derr
	}); err != nil {
		return nil, malformed(files.Corpus, err)
	}

	if len(chunks) != manifest.ChunkCount {
		return nil, fmt.Errorf("%w: manifest lists %d chunks, found %d",
			domain.ErrMalformedPersistedState, manifest.ChunkCount, len(chunks))
	}

	snapshot := &domain.IndexSnapshot{
		Manifest: *manifest,
		Chunks:   chunks,
		Corpus:   corpus,
		Index:    ix,
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Exists reports whether the manifest, chunk file and index file are present.
func (s *IndexStore) Exists(ctx context.Context) bool {
	manifest, err := s.Manifest(ctx)
	if err != nil || manifest == nil {
		return false
	}
	return fileExists(filepath.Join(s.dir, manifest.Files.Chunks)) &&
		fileExists(filepath.Join(s.dir, manifest.Files.Index))
}

// Manifest reads only the manifest. It returns nil, nil when absent.
func (s *IndexStore) Manifest(_ context.Context) (*domain.Manifest, error) {
	var manifest domain.Manifest
	err := readFile(filepath.Join(s.dir, domain.ManifestFileName), func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&manifest)
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, malformed(domain.ManifestFileName, err)
	}
	return &manifest, nil
}

func malformed(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrMalformedPersistedState, name, err)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return read(f)
}

// writeAtomic writes to a temp file in the target directory and renames it
// over path once the content is synced.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
