package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tpaukrt/DRAMConsole/internal/domain/lastlog"
)

// SnapshotRepository implements lastlog.ArchiveRepository using sqlx.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repo.
func NewSnapshotRepository(db *sqlx.DB) lastlog.ArchiveRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Insert(ctx context.Context, a *lastlog.Archive) error {
	query := `INSERT INTO dram_snapshots (id, captured_at, size, content)
		VALUES (:id, :captured_at, :size, :content)`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

// List returns archive metadata, newest first. Content is not loaded.
func (r *SnapshotRepository) List(ctx context.Context, limit, offset int) ([]lastlog.Archive, int, error) {
	query := r.db.Rebind(`SELECT id, captured_at, size FROM dram_snapshots
		ORDER BY captured_at DESC LIMIT ? OFFSET ?`)
	var rows []lastlog.Archive
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM dram_snapshots`); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *SnapshotRepository) Get(ctx context.Context, id uuid.UUID) (*lastlog.Archive, error) {
	var a lastlog.Archive
	query := r.db.Rebind(`SELECT id, captured_at, size, content FROM dram_snapshots WHERE id = ?`)
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lastlog.ErrArchiveNotFound
		}
		return nil, err
	}
	return &a, nil
}
