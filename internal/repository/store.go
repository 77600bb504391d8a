package repository

import (
	"context"

	"ocr-ai-service/internal/domain/ocr"
)

// ResultStore persists one record per processed request, keyed by the
// request's timestamp id. Records are single-write; a colliding id is
// overwritten, last write wins, no locking.
type ResultStore interface {
	Save(ctx context.Context, record *ocr.ResultRecord) (string, error)
	Load(ctx context.Context, id string) (*ocr.ResultRecord, error)
}
