package sink

import "github.com/arloliu/bytetrain/internal/hash"

// Meter forwards writes to another sink and records what was accepted: the
// number of writes, the number of bytes and an xxHash64 fingerprint of the
// bytes in order. Failed writes are counted separately and do not touch the
// fingerprint. The fingerprint is never added to the stream.
type Meter struct {
	next     Sink
	writes   uint64
	bytes    uint64
	failures uint64
	print    *hash.Fingerprint
}

var _ Sink = (*Meter)(nil)

// NewMeter wraps next.
func NewMeter(next Sink) *Meter {
	return &Meter{
		next:  next,
		print: hash.NewFingerprint(),
	}
}

// Write forwards p and returns next's error unchanged.
func (m *Meter) Write(p []byte) error {
	if err := m.next.Write(p); err != nil {
		m.failures++
		return err
	}

	m.writes++
	m.bytes += uint64(len(p))
	m.print.Add(p)

	return nil
}

// Writes returns the number of accepted writes.
func (m *Meter) Writes() uint64 { return m.writes }

// Bytes returns the number of accepted bytes.
func (m *Meter) Bytes() uint64 { return m.bytes }

// Failures returns the number of writes the wrapped sink rejected.
func (m *Meter) Failures() uint64 { return m.failures }

// Sum64 returns the fingerprint of all accepted bytes.
func (m *Meter) Sum64() uint64 { return m.print.Sum64() }

// Reset zeroes the counters and the fingerprint.
func (m *Meter) Reset() {
	m.writes, m.bytes, m.failures = 0, 0, 0
	m.print.Reset()
}
