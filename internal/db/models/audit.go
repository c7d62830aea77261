package models

import (
	"time"
)

type AuditAction string

const (
	AuditIssued  AuditAction = "issued"
	AuditRevoked AuditAction = "revoked"
)

// AuditLog records privileged actions taken against a certificate.
type AuditLog struct {
	ID            string      `gorm:"primaryKey" json:"id"`
	CertificateID string      `gorm:"index;not null" json:"certificate_id"`
	Action        AuditAction `gorm:"not null" json:"action"`
	ActorID       string      `gorm:"not null" json:"actor_id"`
	Details       string      `json:"details,omitempty"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
}
