// Package extract defines the capability boundary between the matching
// engine and the external feature-extraction models. The engine stays
// agnostic to model choice: anything that turns a raw captured sample into
// a fixed-length vector can back a modality.
package extract

import "context"

// Extractor converts one raw biometric sample (image bytes, audio bytes,
// serialized motion sequence) into a fixed-length feature vector.
//
// Implementations must be safe for concurrent use. Failures are returned
// wrapped in common.ErrExtraction with a human-readable reason.
type Extractor interface {
	// Extract computes the feature vector for sample. The call may block
	// for non-trivial time (network or heavy local computation) and must
	// honor ctx cancellation and deadlines.
	Extract(ctx context.Context, sample []byte) ([]float32, error)

	// Dimension reports the length of vectors this extractor produces.
	Dimension() int
}
