// Package store is the persistence boundary of the service. The core never
// talks to the database directly; it goes through these interfaces so unit
// tests run against the in-memory implementation and production runs against
// gorm/postgres behind the same contract.
package store

import (
	"context"

	"github.com/certchain/backend/internal/db/models"
)

type CertificateStore interface {
	CreateCertificate(ctx context.Context, cert *models.Certificate) error
	CertificateByID(ctx context.Context, id string) (*models.Certificate, error)
	CertificateByFingerprint(ctx context.Context, fingerprint string) (*models.Certificate, error)
	CertificatesByHolderEmail(ctx context.Context, email string) ([]models.Certificate, error)
	CertificatesByInstitution(ctx context.Context, institutionID string) ([]models.Certificate, error)
	UpdateCertificate(ctx context.Context, cert *models.Certificate) error
}

// InstitutionFilter narrows List results; zero values match everything.
// Search matches name or email, case-insensitive substring.
type InstitutionFilter struct {
	Status models.InstitutionStatus
	Search string
}

type InstitutionStore interface {
	CreateInstitution(ctx context.Context, inst *models.Institution) error
	InstitutionByID(ctx context.Context, id string) (*models.Institution, error)
	InstitutionByEmail(ctx context.Context, email string) (*models.Institution, error)
	ListInstitutions(ctx context.Context, filter InstitutionFilter) ([]models.Institution, error)
	UpdateInstitution(ctx context.Context, inst *models.Institution) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type VerificationStore interface {
	AppendVerification(ctx context.Context, req *models.VerificationRequest) error
	VerificationsByCertificate(ctx context.Context, certificateID string) ([]models.VerificationRequest, error)
}

type AuditStore interface {
	AppendAudit(ctx context.Context, entry *models.AuditLog) error
	AuditByCertificate(ctx context.Context, certificateID string) ([]models.AuditLog, error)
}

// Store aggregates every persistence concern the services need.
type Store interface {
	CertificateStore
	InstitutionStore
	UserStore
	VerificationStore
	AuditStore
}
