package driven

import (
	"context"

	"github.com/clearpath-labs/clearpath/internal/core/domain"
)

// RequestLogger appends one record per served query.
// Callers treat errors as non-fatal.
type RequestLogger interface {
	// Append writes a record.
	Append(ctx context.Context, record domain.RequestLog) error

	// Recent returns the last limit records, oldest first. limit <= 0 returns all.
	Recent(ctx context.Context, limit int) ([]domain.RequestLog, error)

	// Close releases resources.
	Close() error
}
