// Package capture implements the crash-surviving log capture core: a
// byte-granular ring buffer that lives inside a caller-supplied memory
// region, and the one-shot snapshot that freezes the previous cycle's
// retained bytes into a linear, printable-safe form.
package capture

import (
	"encoding/binary"
	"errors"
	"runtime"
	"sync/atomic"
)

const (
	// DefaultSize is the default data capacity of both buffers.
	DefaultSize = 8192

	// headerBytes trail the data area inside the region: head, tail
	// and the validity tag, one little-endian uint32 each.
	headerBytes = 12

	// ringMagic marks a region whose header was written by Reinit.
	// Any other value means the region holds arbitrary leftover bytes.
	ringMagic = 0x4452414D
)

// RegionSize returns the number of backing bytes a ring of the given
// data capacity needs.
func RegionSize(capacity int) int {
	return capacity + headerBytes
}

// Ring is a fixed-capacity circular byte store. All of its state,
// including the write cursors, is encoded in the backing region so that
// a file-backed region carries the previous run's content into the next
// process. When full, the oldest complete line is evicted to make room.
//
// Write, Reinit and TakeSnapshot serialize on a non-blocking spin
// acquire; none of them allocates or parks a goroutine.
type Ring struct {
	busy    atomic.Uint32
	region  []byte
	size    int
	written uint64 // bytes accepted, updated under the guard
	evicted uint64 // bytes discarded, updated under the guard
}

// NewRing wraps a backing region. The region's existing content is left
// untouched; callers decide via TakeSnapshot and Reinit what to do with
// whatever state the region arrived in.
func NewRing(region []byte) (*Ring, error) {
	if len(region) <= headerBytes {
		return nil, errors.New("capture: region smaller than ring header")
	}
	return &Ring{region: region, size: len(region) - headerBytes}, nil
}

// Size returns the data capacity.
func (r *Ring) Size() int {
	return r.size
}

func (r *Ring) acquire() {
	for !r.busy.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

func (r *Ring) release() {
	r.busy.Store(0)
}

func (r *Ring) head() uint32 {
	return binary.LittleEndian.Uint32(r.region[r.size:])
}

func (r *Ring) tail() uint32 {
	return binary.LittleEndian.Uint32(r.region[r.size+4:])
}

func (r *Ring) magic() uint32 {
	return binary.LittleEndian.Uint32(r.region[r.size+8:])
}

func (r *Ring) setCursors(head, tail uint32) {
	binary.LittleEndian.PutUint32(r.region[r.size:], head)
	binary.LittleEndian.PutUint32(r.region[r.size+4:], tail)
}

// validLocked reports whether the header was written by this package
// and the cursors are inside the data area. Callers hold the guard.
func (r *Ring) validLocked() bool {
	return r.magic() == ringMagic && r.head() < uint32(r.size) && r.tail() < uint32(r.size)
}

// Valid reports whether the region holds a well-formed ring state.
func (r *Ring) Valid() bool {
	r.acquire()
	ok := r.validLocked()
	r.release()
	return ok
}

// Write appends p to the ring. When the head cursor catches the tail,
// the oldest bytes are evicted until a full line was consumed or the
// buffer drained, whichever comes first. Write accepts any input at any
// time and never fails; the critical section is proportional to len(p).
func (r *Ring) Write(p []byte) (int, error) {
	r.acquire()
	size := r.size
	head := int(r.head())
	tail := int(r.tail())
	for _, b := range p {
		r.region[head] = b
		head++
		if head == size {
			head = 0
		}
		if head == tail {
			for {
				old := r.region[tail]
				tail++
				if tail == size {
					tail = 0
				}
				r.evicted++
				if old == '\n' || tail == head {
					break
				}
			}
		}
	}
	r.written += uint64(len(p))
	r.setCursors(uint32(head), uint32(tail))
	r.release()
	return len(p), nil
}

// Reinit resets the ring to an empty, valid state and stamps the
// validity tag. Called once per cycle, after TakeSnapshot has consumed
// the previous cycle's state and before any Write for the new cycle.
func (r *Ring) Reinit() {
	r.acquire()
	r.setCursors(0, 0)
	binary.LittleEndian.PutUint32(r.region[r.size+8:], ringMagic)
	r.release()
}

// Stats returns the total bytes accepted and evicted since NewRing.
func (r *Ring) Stats() (written, evicted uint64) {
	r.acquire()
	written, evicted = r.written, r.evicted
	r.release()
	return written, evicted
}
