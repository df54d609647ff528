package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint is a running xxHash64 over every byte added to it.
type Fingerprint struct {
	digest *xxhash.Digest
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{digest: xxhash.New()}
}

// Add feeds p into the fingerprint.
func (f *Fingerprint) Add(p []byte) {
	_, _ = f.digest.Write(p)
}

// Sum64 returns the fingerprint of everything added so far.
func (f *Fingerprint) Sum64() uint64 {
	return f.digest.Sum64()
}

// Reset clears the fingerprint.
func (f *Fingerprint) Reset() {
	f.digest.Reset()
}

// Sum64 computes the xxHash64 of p in one call.
func Sum64(p []byte) uint64 {
	return xxhash.Sum64(p)
}
