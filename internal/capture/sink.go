package capture

// Tap receives every byte span entering the sink, after it has been
// stored in the ring. Taps must not block and must not retain p.
type Tap func(p []byte)

// Sink is the byte entry point handed to log producers. It satisfies
// io.Writer so it can sit behind a zap core, a console writer or any
// other fire-and-forget log subsystem, and fans each span out to the
// optional taps (e.g. the live-tail hub).
type Sink struct {
	ring *Ring
	taps []Tap
}

// NewSink builds a sink over ring.
func NewSink(ring *Ring, taps ...Tap) *Sink {
	return &Sink{ring: ring, taps: taps}
}

// Write stores p in the ring and notifies the taps. It never fails.
func (s *Sink) Write(p []byte) (int, error) {
	s.ring.Write(p)
	for _, tap := range s.taps {
		tap(p)
	}
	return len(p), nil
}
