// Package region acquires the backing memory for the capture buffers.
// The capture core only ever sees a plain byte slice; whether that
// slice survives a process restart depends entirely on the provider
// chosen here.
package region

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a mapped byte range plus whatever teardown it needs.
type Region interface {
	Bytes() []byte
	Close() error
}

// Anonymous returns a heap-backed region. Content is zeroed, so a ring
// attached to it is always seen as uninitialized. Used for tests and
// for running without a persistence path.
func Anonymous(size int) Region {
	return memRegion(make([]byte, size))
}

type memRegion []byte

func (m memRegion) Bytes() []byte { return m }
func (m memRegion) Close() error  { return nil }

// File maps a file into memory. On the first boot the file is created
// and zero-filled; on later boots it carries whatever the previous run
// left behind, which is exactly what the snapshot consumes. Survives a
// process crash via the page cache; does not survive power loss unless
// the path lives on persistent memory.
type File struct {
	data []byte
	f    *os.File
}

// OpenFile creates or opens path and maps size bytes of it.
func OpenFile(path string, size int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("region: stat %s: %w", path, err)
	}
	if info.Size() != int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("region: size %s: %w", path, err)
		}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("region: mmap %s: %w", path, err)
	}
	return &File{data: data, f: f}, nil
}

// Bytes returns the mapped range.
func (r *File) Bytes() []byte { return r.data }

// Close unmaps the region and closes the file.
func (r *File) Close() error {
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			return fmt.Errorf("region: munmap: %w", err)
		}
		r.data = nil
	}
	return r.f.Close()
}
