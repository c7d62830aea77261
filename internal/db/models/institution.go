package models

import (
	"time"
)

type InstitutionStatus string

const (
	InstitutionPending     InstitutionStatus = "pending"
	InstitutionActive      InstitutionStatus = "active"
	InstitutionSuspended   InstitutionStatus = "suspended"
	InstitutionDeactivated InstitutionStatus = "deactivated"
)

// Institution is an organization permitted to issue certificates once a
// super admin moves it out of the pending state.
type Institution struct {
	ID               string            `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"not null" json:"name"`
	Email            string            `gorm:"uniqueIndex;not null" json:"email"`
	Website          string            `json:"website,omitempty"`
	Address          string            `json:"address,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	LogoURL          string            `json:"logo_url,omitempty"`
	Status           InstitutionStatus `gorm:"not null;default:'pending';index" json:"status"`
	ApprovalNotes    string            `json:"approval_notes,omitempty"`
	ApprovedBy       *string           `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	CertificateCount int64             `gorm:"not null;default:0" json:"certificate_count"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
