package models

import "fmt"

// Modality is one authentication factor type.
type Modality string

const (
	ModalityFace    Modality = "face"
	ModalityVoice   Modality = "voice"
	ModalityGesture Modality = "gesture"
	ModalityCode    Modality = "code"
)

// Modalities lists all factor types in the order the authentication
// sequence checks them.
func Modalities() []Modality {
	return []Modality{ModalityFace, ModalityVoice, ModalityGesture, ModalityCode}
}

// BiometricModalities lists the factor types backed by an embedding index.
// The code factor is knowledge-based and verified against a stored hash.
func BiometricModalities() []Modality {
	return []Modality{ModalityFace, ModalityVoice, ModalityGesture}
}

// ParseModality validates a modality string from an external request.
func ParseModality(s string) (Modality, error) {
	switch Modality(s) {
	case ModalityFace, ModalityVoice, ModalityGesture, ModalityCode:
		return Modality(s), nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}
