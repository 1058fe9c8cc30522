package vecindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/authentix/internal/common"
)

// Flat is an exact in-memory index over a flat table of normalized vectors.
// Every successful Upsert is written through to the snapshot store before it
// is acknowledged, so a crash after a successful enroll never loses that
// enrollment.
type Flat struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float32
	store     SnapshotStore
}

// NewFlat builds a Flat index of the given dimension and loads any existing
// snapshot from store. A missing snapshot yields an empty index.
func NewFlat(ctx context.Context, dimension int, store SnapshotStore) (*Flat, error) {
	vectors, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load snapshot: %v", common.ErrPersistence, err)
	}
	if vectors == nil {
		vectors = make(map[string][]float32)
	}
	for userID, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: snapshot vector for %s has length %d, want %d",
				common.ErrDimensionMismatch, userID, len(v), dimension)
		}
	}
	return &Flat{dimension: dimension, vectors: vectors, store: store}, nil
}

func (f *Flat) Dimension() int { return f.dimension }

func (f *Flat) Len(ctx context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors), nil
}

// Upsert normalizes vector and replaces any prior entry for userID. If the
// write-through persist fails the in-memory table is rolled back so memory
// and disk never diverge.
func (f *Flat) Upsert(ctx context.Context, userID string, vector []float32) error {
	if len(vector) != f.dimension {
		return fmt.Errorf("%w: got %d, want %d", common.ErrDimensionMismatch, len(vector), f.dimension)
	}
	normalized, err := Normalize(vector)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, hadPrev := f.vectors[userID]
	f.vectors[userID] = normalized

	if err := f.store.Save(ctx, f.vectors); err != nil {
		if hadPrev {
			f.vectors[userID] = prev
		} else {
			delete(f.vectors, userID)
		}
		return fmt.Errorf("%w: save snapshot: %v", common.ErrPersistence, err)
	}
	return nil
}

// Search scores the query against every stored vector and returns the top k
// by descending cosine similarity.
func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]Candidate, error) {
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", common.ErrDimensionMismatch, len(query), f.dimension)
	}
	if k <= 0 {
		k = DefaultSearchK
	}

	f.mu.RLock()
	candidates := make([]Candidate, 0, len(f.vectors))
	for userID, v := range f.vectors {
		candidates = append(candidates, Candidate{UserID: userID, Score: Dot(query, v)})
	}
	f.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].UserID < candidates[j].UserID
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}
