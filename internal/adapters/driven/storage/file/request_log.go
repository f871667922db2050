package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
	"github.com/clearpath-labs/clearpath/internal/core/ports/driven"
)

// RequestLogFile is the file name of the JSONL request log.
const RequestLogFile = "requests.jsonl"

// Ensure RequestLog implements the interface.
var _ driven.RequestLogger = (*RequestLog)(nil)

// RequestLog appends one JSON object per line.
type RequestLog struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewRequestLog opens (creating if needed) the request log in dir.
func NewRequestLog(dir string) (*RequestLog, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty log directory", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(dir, RequestLogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening request log: %w", err)
	}
	return &RequestLog{path: path, f: f}, nil
}

// Path returns the log file path.
func (l *RequestLog) Path() string {
	return l.path
}

// Append writes record as a single line.
func (l *RequestLog) Append(_ context.Context, record domain.RequestLog) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding request log: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return errors.New("request log closed")
	}
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("writing request log: %w", err)
	}
	return nil
}

// Recent reads the file back and returns the last limit records, oldest
// first. limit <= 0 returns all. Undecodable lines are skipped.
func (l *RequestLog) Recent(ctx context.Context, limit int) ([]domain.RequestLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening request log: %w", err)
	}
	defer f.Close()

	var records []domain.RequestLog
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var record domain.RequestLog
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		records = append(records, record)
		if limit > 0 && len(records) > limit {
			records = records[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading request log: %w", err)
	}
	return records, nil
}

// Close closes the log file.
func (l *RequestLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
