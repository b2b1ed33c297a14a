package capture

import "sync"

// Linear holds the frozen snapshot of the previous cycle. It is written
// exactly once per process by TakeSnapshot and thereafter only read or
// truncated. The mutex makes Read and Truncate safe for concurrent HTTP
// callers; no external serialization is required.
type Linear struct {
	mu    sync.RWMutex
	data  []byte
	count int
}

// NewLinear allocates a snapshot destination. The capacity must match
// the ring's data capacity.
func NewLinear(capacity int) *Linear {
	if capacity <= 0 {
		capacity = DefaultSize
	}
	return &Linear{data: make([]byte, capacity)}
}

// Len returns the number of valid snapshot bytes.
func (l *Linear) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Read returns a copy of up to limit snapshot bytes starting at offset,
// with conventional file semantics: the offset is clamped into
// [0, Len()] and the result is shorter than limit only at end of data.
func (l *Linear) Read(offset, limit int) []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset > l.count {
		offset = l.count
	}
	if limit < 0 {
		limit = 0
	}
	// Compare against the remaining bytes rather than offset+limit,
	// which can overflow for huge limits.
	if limit > l.count-offset {
		limit = l.count - offset
	}
	out := make([]byte, limit)
	copy(out, l.data[offset:offset+limit])
	return out
}

// Bytes returns a copy of the whole snapshot.
func (l *Linear) Bytes() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]byte, l.count)
	copy(out, l.data[:l.count])
	return out
}

// Truncate unconditionally empties the snapshot, regardless of what the
// caller attempted to write, and echoes the attempted payload length so
// the operation reads as a successful write. Once truncated the buffer
// stays empty until the next restart cycle.
func (l *Linear) Truncate(payload int) int {
	l.mu.Lock()
	l.count = 0
	l.mu.Unlock()
	return payload
}

func (l *Linear) reset() {
	l.mu.Lock()
	l.count = 0
	l.mu.Unlock()
}
