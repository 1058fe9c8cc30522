// Package mock provides a deterministic in-memory extract.Extractor for
// tests: each distinct sample hashes to a stable vector, or a canned
// vector/error can be pinned explicitly.
package mock

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/dmitrijs2005/authentix/internal/extract"
)

var _ extract.Extractor = (*Extractor)(nil)

// Extractor is a test double. The zero value is not usable; use New.
type Extractor struct {
	mu        sync.Mutex
	dimension int

	// Vector, when non-nil, is returned for every sample.
	Vector []float32

	// Err, when non-nil, is returned for every sample.
	Err error

	// Calls counts Extract invocations.
	Calls int
}

// New builds a mock producing vectors of the given dimension.
func New(dimension int) *Extractor {
	return &Extractor{dimension: dimension}
}

func (e *Extractor) Dimension() int { return e.dimension }

// Extract returns the pinned error or vector if set; otherwise it derives a
// stable pseudo-vector from the sample's SHA-256, so the same sample always
// yields the same vector and different samples almost surely differ.
func (e *Extractor) Extract(ctx context.Context, sample []byte) ([]float32, error) {
	e.mu.Lock()
	e.Calls++
	vec, errOut := e.Vector, e.Err
	e.mu.Unlock()

	if errOut != nil {
		return nil, errOut
	}
	if vec != nil {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out, nil
	}

	sum := sha256.Sum256(sample)
	out := make([]float32, e.dimension)
	for i := range out {
		b := sum[i%len(sum)]
		out[i] = float32(int(b)-128) / 128
	}
	return out, nil
}
