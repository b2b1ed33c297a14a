package capture

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotFidelity(t *testing.T) {
	ring := newTestRing(t, 64)
	dst := NewLinear(64)

	_, err := ring.Write([]byte("printable ascii only\n"))
	require.NoError(t, err)

	n := TakeSnapshot(ring, dst)
	require.Equal(t, 21, n)
	require.Equal(t, 21, dst.Len())
	require.Equal(t, "printable ascii only\n", string(dst.Read(0, n)))
}

func TestSnapshotSanitizesBytes(t *testing.T) {
	ring := newTestRing(t, 32)
	dst := NewLinear(32)

	_, err := ring.Write([]byte{0x01, 0x85, '\n', 'A', 0x1F, 0xC1})
	require.NoError(t, err)

	n := TakeSnapshot(ring, dst)
	require.Equal(t, 6, n)
	require.Equal(t, []byte{0x21, 0x25, '\n', 'A', 0x3F, 'A'}, dst.Read(0, n))
}

func TestSnapshotAcrossWrap(t *testing.T) {
	ring := newTestRing(t, 10)
	dst := NewLinear(10)

	// Force the retained region to straddle the end of storage.
	_, err := ring.Write([]byte("aaaaa\nbbbbb\n"))
	require.NoError(t, err)

	n := TakeSnapshot(ring, dst)
	require.Equal(t, 6, n)
	require.Equal(t, "bbbbb\n", string(dst.Read(0, n)))
}

func TestSnapshotInvalidRingYieldsEmpty(t *testing.T) {
	region := make([]byte, RegionSize(16))
	for i := range region {
		region[i] = 0xA7 // arbitrary leftover bytes, no valid tag
	}
	ring, err := NewRing(region)
	require.NoError(t, err)

	dst := NewLinear(16)
	dst.data[0] = 'x'
	dst.count = 1

	require.Zero(t, TakeSnapshot(ring, dst))
	require.Zero(t, dst.Len())
}

func TestSnapshotEmptyRing(t *testing.T) {
	ring := newTestRing(t, 16)
	dst := NewLinear(16)

	require.Zero(t, TakeSnapshot(ring, dst))
	require.Zero(t, dst.Len())
}

func TestSnapshotUndersizedDestination(t *testing.T) {
	ring := newTestRing(t, 32)
	_, err := ring.Write([]byte("twelve bytes\n"))
	require.NoError(t, err)

	dst := NewLinear(4)
	require.Zero(t, TakeSnapshot(ring, dst))
	require.Zero(t, dst.Len())
}
