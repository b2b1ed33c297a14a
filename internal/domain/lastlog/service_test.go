package lastlog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tpaukrt/DRAMConsole/internal/capture"
)

// bootService builds a service over a ring that held content when the
// process "restarted", mirroring the boot sequence in cmd/dramconsoled.
func bootService(t *testing.T, previous string, repo ArchiveRepository) *Service {
	t.Helper()
	ring, err := capture.NewRing(make([]byte, capture.RegionSize(128)))
	require.NoError(t, err)
	ring.Reinit()
	_, err = ring.Write([]byte(previous))
	require.NoError(t, err)

	snap := capture.NewLinear(128)
	capture.TakeSnapshot(ring, snap)
	ring.Reinit()
	return NewService(ring, snap, repo, zap.NewNop())
}

func TestReadAfterBoot(t *testing.T) {
	s := bootService(t, "abc\ndef\n", nil)

	require.Equal(t, 8, s.SnapshotLen())
	require.Equal(t, "abc\ndef\n", string(s.Read(0, 8)))
	require.Equal(t, "def\n", string(s.Read(4, 8)))
	require.Empty(t, s.Read(100, 8))
}

func TestTruncateThenRead(t *testing.T) {
	s := bootService(t, "abc\ndef\n", nil)

	require.Equal(t, 5, s.Truncate(5))
	require.Zero(t, s.SnapshotLen())
	require.Empty(t, s.Read(0, 100))
}

func TestArchiveSnapshotStoresContent(t *testing.T) {
	repo := newFakeArchiveRepo()
	s := bootService(t, "panic: boom\n", repo)

	s.ArchiveSnapshot(context.Background())

	require.Equal(t, 1, repo.count())
	stored := repo.latest()
	require.Equal(t, 12, stored.Size)
	require.Equal(t, "panic: boom\n", string(stored.Content))
}

func TestArchiveSnapshotSkipsEmpty(t *testing.T) {
	repo := newFakeArchiveRepo()
	s := bootService(t, "", repo)

	s.ArchiveSnapshot(context.Background())

	require.Zero(t, repo.count())
}

func TestArchiveSnapshotSurvivesInsertFailure(t *testing.T) {
	repo := newFakeArchiveRepo()
	repo.insertErr = errors.New("db down")
	s := bootService(t, "tail\n", repo)

	s.ArchiveSnapshot(context.Background())

	require.Zero(t, repo.count())
	// The live snapshot is unaffected.
	require.Equal(t, 5, s.SnapshotLen())
}

func TestArchiveLookups(t *testing.T) {
	repo := newFakeArchiveRepo()
	s := bootService(t, "tail\n", repo)
	s.ArchiveSnapshot(context.Background())

	list, total, err := s.ListArchives(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)

	got, err := s.GetArchive(context.Background(), list[0].ID)
	require.NoError(t, err)
	require.Equal(t, "tail\n", string(got.Content))

	_, err = s.GetArchive(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestArchiveDisabledWithoutRepo(t *testing.T) {
	s := bootService(t, "tail\n", nil)

	_, _, err := s.ListArchives(context.Background(), 10, 0)
	require.ErrorIs(t, err, ErrArchiveDisabled)
	_, err = s.GetArchive(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrArchiveDisabled)
}

func TestRenderViewStripsMarkup(t *testing.T) {
	s := bootService(t, "<script>alert(1)</script>ok\n", nil)

	page := s.RenderView()
	require.Contains(t, page, "<pre>")
	require.NotContains(t, page, "<script>")
	require.Contains(t, page, "ok")
}

type fakeArchiveRepo struct {
	rows      []Archive
	insertErr error
}

func newFakeArchiveRepo() *fakeArchiveRepo {
	return &fakeArchiveRepo{}
}

func (f *fakeArchiveRepo) Insert(ctx context.Context, a *Archive) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	clone := *a
	clone.Content = append([]byte(nil), a.Content...)
	f.rows = append(f.rows, clone)
	return nil
}

func (f *fakeArchiveRepo) List(ctx context.Context, limit, offset int) ([]Archive, int, error) {
	out := make([]Archive, 0, len(f.rows))
	for i := offset; i < len(f.rows) && len(out) < limit; i++ {
		meta := f.rows[i]
		meta.Content = nil
		out = append(out, meta)
	}
	return out, len(f.rows), nil
}

func (f *fakeArchiveRepo) Get(ctx context.Context, id uuid.UUID) (*Archive, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			clone := f.rows[i]
			return &clone, nil
		}
	}
	return nil, ErrArchiveNotFound
}

func (f *fakeArchiveRepo) count() int {
	return len(f.rows)
}

func (f *fakeArchiveRepo) latest() Archive {
	return f.rows[len(f.rows)-1]
}
