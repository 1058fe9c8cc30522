// Package vecindex implements per-modality embedding indexes: stores one
// L2-normalized vector per user and answers nearest-neighbour queries by
// cosine similarity.
package vecindex

import (
	"context"
	"math"

	"github.com/dmitrijs2005/authentix/internal/common"
)

// DefaultSearchK is the candidate window used when a caller does not specify
// k. It is large enough that the claimed user's own vector is usually inside
// the window even in a sizeable population.
const DefaultSearchK = 10

// Candidate is one search hit: a user and the cosine similarity of their
// stored vector to the query, in [-1, 1].
type Candidate struct {
	UserID string
	Score  float64
}

// Index stores at most one normalized vector per user and answers
// similarity queries across all of them.
//
// Implementations must be safe for concurrent use.
type Index interface {
	// Upsert replaces any existing vector for userID. The vector is
	// normalized internally; callers may pass raw extractor output.
	Upsert(ctx context.Context, userID string, vector []float32) error

	// Search returns up to k candidates ordered by descending similarity.
	// An empty index yields an empty slice, not an error. k <= 0 uses
	// DefaultSearchK.
	Search(ctx context.Context, query []float32, k int) ([]Candidate, error)

	// Len reports the number of enrolled vectors.
	Len(ctx context.Context) (int, error)

	// Dimension reports the fixed vector length this index accepts.
	Dimension() int
}

// Normalize scales v to unit Euclidean norm, returning a new slice.
// An all-zero input yields common.ErrDegenerateVector.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil, common.ErrDegenerateVector
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// Dot returns the dot product of two equal-length vectors. For unit-norm
// inputs this equals their cosine similarity.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
