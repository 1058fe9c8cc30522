// Package matching is the policy layer of the biometric engine: it turns a
// raw feature vector into an enrollment or a verification decision against
// the modality's embedding index.
package matching

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/vecindex"
)

// Decision is the tagged outcome of a verification.
type Decision string

const (
	// DecisionMatch means the claimed user's stored vector met the
	// modality threshold.
	DecisionMatch Decision = "match"

	// DecisionNoMatch means the claimed user's stored vector was found but
	// scored below the threshold.
	DecisionNoMatch Decision = "no_match"

	// DecisionNotEnrolled means no candidate for the claimed user appeared
	// in the search window: the user has no enrollment, or it is so
	// dissimilar it fell outside the top-k. Both are treated identically
	// as "cannot confirm".
	DecisionNotEnrolled Decision = "not_enrolled"
)

// Outcome carries the decision and, when a candidate was scored, its cosine
// similarity.
type Outcome struct {
	Decision   Decision
	Confidence float64
}

// Profile fixes a modality's vector dimensionality and decision threshold.
type Profile struct {
	Dimension int
	Threshold float64
}

// Profiles maps each biometric modality to its fixed profile. Dimensions
// follow the feature extractors (FaceNet-style 128-d face embeddings, 40
// MFCC means + 40 deviations for voice, pooled 6-axis IMU statistics for
// gesture).
var Profiles = map[models.Modality]Profile{
	models.ModalityFace:    {Dimension: 128, Threshold: 0.75},
	models.ModalityVoice:   {Dimension: 80, Threshold: 0.70},
	models.ModalityGesture: {Dimension: 64, Threshold: 0.70},
}

// Service owns normalization and threshold policy for all biometric
// modalities. It never mutates index storage beyond delegated upserts.
type Service struct {
	indexes  map[models.Modality]vecindex.Index
	profiles map[models.Modality]Profile
	searchK  int
}

// NewService wires one index per biometric modality. profiles usually is
// the package-level Profiles table; tests pass smaller dimensions.
func NewService(indexes map[models.Modality]vecindex.Index, profiles map[models.Modality]Profile) *Service {
	return &Service{indexes: indexes, profiles: profiles, searchK: vecindex.DefaultSearchK}
}

func (s *Service) index(modality models.Modality) (vecindex.Index, error) {
	idx, ok := s.indexes[modality]
	if !ok {
		return nil, fmt.Errorf("no index for modality %q", modality)
	}
	return idx, nil
}

// Enroll normalizes raw and stores it as the user's single live vector for
// the modality, replacing any prior enrollment.
func (s *Service) Enroll(ctx context.Context, userID string, modality models.Modality, raw []float32) error {
	idx, err := s.index(modality)
	if err != nil {
		return err
	}
	normalized, err := vecindex.Normalize(raw)
	if err != nil {
		return err
	}
	return idx.Upsert(ctx, userID, normalized)
}

// Verify normalizes raw, searches the modality index, filters candidates to
// the claimed identity and applies the threshold. The threshold comparison
// is inclusive: a score exactly at the boundary is a match.
func (s *Service) Verify(ctx context.Context, userID string, modality models.Modality, raw []float32) (Outcome, error) {
	idx, err := s.index(modality)
	if err != nil {
		return Outcome{}, err
	}
	normalized, err := vecindex.Normalize(raw)
	if err != nil {
		return Outcome{}, err
	}

	candidates, err := idx.Search(ctx, normalized, s.searchK)
	if err != nil {
		return Outcome{}, err
	}

	for _, c := range candidates {
		if c.UserID != userID {
			continue
		}
		threshold := s.profiles[modality].Threshold
		if c.Score >= threshold {
			return Outcome{Decision: DecisionMatch, Confidence: c.Score}, nil
		}
		return Outcome{Decision: DecisionNoMatch, Confidence: c.Score}, nil
	}
	return Outcome{Decision: DecisionNotEnrolled}, nil
}
