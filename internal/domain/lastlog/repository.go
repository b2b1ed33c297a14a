package lastlog

import (
	"context"

	"github.com/google/uuid"
)

// ArchiveRepository persists and retrieves boot-cycle snapshots.
type ArchiveRepository interface {
	Insert(ctx context.Context, a *Archive) error
	List(ctx context.Context, limit, offset int) ([]Archive, int, error)
	Get(ctx context.Context, id uuid.UUID) (*Archive, error)
}
