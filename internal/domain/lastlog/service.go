package lastlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/tpaukrt/DRAMConsole/internal/capture"
)

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrArchiveNotFound = errors.New("archived snapshot not found")
	ErrArchiveDisabled = errors.New("snapshot archive not configured")
)

// Service fronts the frozen snapshot and the snapshot archive. The
// live ring is only touched here during Boot; afterwards it belongs to
// the log producers.
type Service struct {
	ring      *capture.Ring
	snap      *capture.Linear
	archive   ArchiveRepository // nil when no database is configured
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewService wires a Service.
func NewService(ring *capture.Ring, snap *capture.Linear, archive ArchiveRepository, logger *zap.Logger) *Service {
	return &Service{
		ring:      ring,
		snap:      snap,
		archive:   archive,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// ArchiveSnapshot stores the freshly frozen snapshot, if there is one
// and an archive is configured. Insert failure is logged rather than
// propagated: losing one archive row must not take down the capture
// service.
func (s *Service) ArchiveSnapshot(ctx context.Context) {
	n := s.snap.Len()
	if n == 0 || s.archive == nil {
		return
	}
	rec := &Archive{
		ID:         uuid.New(),
		CapturedAt: time.Now().UTC(),
		Size:       n,
		Content:    s.snap.Bytes(),
	}
	if err := s.archive.Insert(ctx, rec); err != nil {
		s.logger.Warn("snapshot archive insert failed", zap.Error(err))
		return
	}
	s.logger.Info("snapshot archived", zap.String("id", rec.ID.String()), zap.Int("bytes", n))
}

// CaptureStats reports the live ring's health: whether its region
// state is well-formed and the byte totals it has seen this cycle.
func (s *Service) CaptureStats() (valid bool, written, evicted uint64) {
	written, evicted = s.ring.Stats()
	return s.ring.Valid(), written, evicted
}

// SnapshotLen returns the current snapshot size in bytes.
func (s *Service) SnapshotLen() int {
	return s.snap.Len()
}

// Read returns up to limit snapshot bytes from offset, with file
// semantics (short read only at end of data).
func (s *Service) Read(offset, limit int) []byte {
	return s.snap.Read(offset, limit)
}

// Truncate empties the snapshot and echoes the attempted payload size.
func (s *Service) Truncate(payload int) int {
	return s.snap.Truncate(payload)
}

// RenderView returns a minimal HTML page embedding the snapshot. The
// snapshot bytes are already printable-safe, but anything resembling
// markup is stripped before it lands inside the page.
func (s *Service) RenderView() string {
	text := s.sanitizer.Sanitize(string(s.snap.Bytes()))
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>last cycle log</title></head><body>\n<pre>")
	b.WriteString(text)
	b.WriteString("</pre>\n</body></html>\n")
	return b.String()
}

// ListArchives pages through archived snapshot metadata.
func (s *Service) ListArchives(ctx context.Context, limit, offset int) ([]Archive, int, error) {
	if s.archive == nil {
		return nil, 0, ErrArchiveDisabled
	}
	return s.archive.List(ctx, limit, offset)
}

// GetArchive fetches one archived snapshot including content.
func (s *Service) GetArchive(ctx context.Context, id uuid.UUID) (*Archive, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Get(ctx, id)
}
