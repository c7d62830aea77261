package models

import (
	"time"
)

type VerificationResult string

const (
	VerificationValid    VerificationResult = "valid"
	VerificationInvalid  VerificationResult = "invalid"
	VerificationRevoked  VerificationResult = "revoked"
	VerificationNotFound VerificationResult = "not_found"
	// VerificationError records attempts that could not be answered because
	// the store was unreachable. Distinct from not_found on purpose.
	VerificationError VerificationResult = "error"
)

// VerificationRequest is the append-only audit row written for every verify
// call, whatever its outcome. Rows are never mutated.
type VerificationRequest struct {
	ID            string             `gorm:"primaryKey" json:"id"`
	Fingerprint   string             `gorm:"index;not null" json:"fingerprint"`
	CertificateID *string            `gorm:"index" json:"certificate_id,omitempty"`
	Result        VerificationResult `gorm:"not null" json:"result"`
	IPAddress     string             `json:"ip_address,omitempty"`
	UserAgent     string             `json:"user_agent,omitempty"`
	VerifiedAt    time.Time          `gorm:"index;not null" json:"verified_at"`
}
