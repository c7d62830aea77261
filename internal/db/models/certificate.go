package models

import (
	"time"

	"gorm.io/datatypes"
)

type CertificateStatus string

const (
	CertificateValid   CertificateStatus = "valid"
	CertificateRevoked CertificateStatus = "revoked"
	// CertificateSuspended exists in the schema; no lifecycle transition
	// into or out of it is exposed yet.
	CertificateSuspended CertificateStatus = "suspended"
)

// Certificate is one issued credential record. Rows are never deleted;
// revocation is the only mutation after issuance.
type Certificate struct {
	ID               string            `gorm:"primaryKey" json:"id"`
	CertificateID    string            `gorm:"uniqueIndex;not null" json:"certificate_id"` // human-readable code, CERT-...
	Fingerprint      string            `gorm:"uniqueIndex;not null" json:"fingerprint"`    // 64 hex chars
	HolderName       string            `gorm:"not null" json:"holder_name"`
	HolderEmail      string            `gorm:"index;not null" json:"holder_email"`
	CourseName       string            `gorm:"not null" json:"course_name"`
	InstitutionID    string            `gorm:"index;not null" json:"institution_id"`
	InstitutionName  string            `gorm:"not null" json:"institution_name"`
	IssueDate        time.Time         `gorm:"not null" json:"issue_date"`
	Grade            string            `json:"grade,omitempty"`
	IssuerID         string            `gorm:"not null" json:"issuer_id"`
	Status           CertificateStatus `gorm:"not null;default:'valid';index" json:"status"`
	LedgerTxID       string            `json:"ledger_tx_id,omitempty"`
	RevokedAt        *time.Time        `json:"revoked_at,omitempty"`
	RevokedBy        *string           `json:"revoked_by,omitempty"`
	RevocationReason string            `json:"revocation_reason,omitempty"`
	Metadata         datatypes.JSON    `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
