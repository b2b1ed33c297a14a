package capture

// TakeSnapshot freezes the ring's retained bytes into dst, oldest
// first, and returns the number of bytes captured. A ring whose region
// was never initialized by Reinit (or whose cursors are corrupt) yields
// an empty snapshot rather than an error: the retrieval surface stays
// available even when there is nothing trustworthy to show.
//
// Every byte is sanitized on the way out: the high bit is cleared, and
// any control byte other than newline is forced into the visible range
// by setting bit 0x20. Newlines survive as line separators, so the
// result renders as plain text with no further escaping.
//
// TakeSnapshot runs once per cycle, strictly before Reinit and before
// the ring accepts any write for the new cycle.
func TakeSnapshot(r *Ring, dst *Linear) int {
	r.acquire()
	defer r.release()

	if !r.validLocked() {
		dst.reset()
		return 0
	}

	size := r.size
	head := int(r.head())
	tail := int(r.tail())

	n := head - tail
	if tail > head {
		n = size - tail + head
	}

	dst.mu.Lock()
	defer dst.mu.Unlock()
	if n > len(dst.data) {
		// Destination sized for a smaller cycle; nothing trustworthy
		// can be copied.
		dst.count = 0
		return 0
	}
	i := 0
	for tail != head {
		b := r.region[tail]
		tail++
		if tail == size {
			tail = 0
		}
		if b&0x80 != 0 {
			b &= 0x7F
		}
		if b < 0x20 && b != '\n' {
			b |= 0x20
		}
		dst.data[i] = b
		i++
	}
	dst.count = n
	return n
}
