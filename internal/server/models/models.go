package models

import "time"

// AuthAttempt is one append-only audit record of an enrollment or
// verification attempt. Confidence is nil when no similarity score was
// produced (extraction failure, unenrolled user, code checks).
type AuthAttempt struct {
	ID         string
	UserID     string
	Modality   Modality
	Success    bool
	Confidence *float64
	Metadata   string
	CreatedAt  time.Time
}

// CodeCredential holds the salted one-way hash of a user's numeric code.
// The raw code is never stored.
type CodeCredential struct {
	UserID    string
	CodeHash  []byte
	Salt      []byte
	UpdatedAt time.Time
}

// FactorStatus is the per-(user, modality) enrollment view. EnrolledAt is
// nil while IsEnrolled is false.
type FactorStatus struct {
	UserID     string
	Modality   Modality
	IsEnrolled bool
	EnrolledAt *time.Time
}
