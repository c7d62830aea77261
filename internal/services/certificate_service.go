package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/fingerprint"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/pkg/metrics"
)

const issueDateLayout = "2006-01-02"

// CertificateService owns issuance and revocation. Verification lives in
// VerificationService.
type CertificateService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewCertificateService(st store.Store, logger *zap.Logger, collector *metrics.Collector) *CertificateService {
	return &CertificateService{
		store:   st,
		logger:  logger.With(zap.String("service", "certificate_service")),
		metrics: collector,
	}
}

type IssueRequest struct {
	HolderName    string
	HolderEmail   string
	CourseName    string
	InstitutionID string
	IssueDate     string // YYYY-MM-DD
	Grade         string
	Metadata      datatypes.JSON
}

func (req *IssueRequest) validate() error {
	switch {
	case strings.TrimSpace(req.HolderName) == "":
		return validationErr("holder_name", "required")
	case strings.TrimSpace(req.HolderEmail) == "":
		return validationErr("holder_email", "required")
	case !strings.Contains(req.HolderEmail, "@"):
		return validationErr("holder_email", "not an email address")
	case strings.TrimSpace(req.CourseName) == "":
		return validationErr("course_name", "required")
	case strings.TrimSpace(req.InstitutionID) == "":
		return validationErr("institution_id", "required")
	case strings.TrimSpace(req.IssueDate) == "":
		return validationErr("issue_date", "required")
	}
	if _, err := time.Parse(issueDateLayout, req.IssueDate); err != nil {
		return validationErr("issue_date", "must be YYYY-MM-DD")
	}
	return nil
}

// Issue creates a certificate for the caller's institution. The caller must
// be an admin or issuer of an active institution. The new record always
// starts in the valid state.
func (cs *CertificateService) Issue(ctx context.Context, identity *Identity, req IssueRequest) (*models.Certificate, error) {
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := Authorize(identity, ActionIssueCertificate, Resource{InstitutionID: req.InstitutionID}); err != nil {
		return nil, err
	}

	inst, err := cs.store.InstitutionByID(ctx, req.InstitutionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, dependencyErr("institution lookup", err)
	}
	if inst.Status != models.InstitutionActive {
		return nil, &AuthorizationError{
			Action: string(ActionIssueCertificate),
			Reason: fmt.Sprintf("institution is %s, not active", inst.Status),
		}
	}

	issueDate, _ := time.Parse(issueDateLayout, req.IssueDate)

	code, err := fingerprint.NewCertificateCode()
	if err != nil {
		return nil, dependencyErr("certificate code generation", err)
	}
	txID, err := fingerprint.NewLedgerTxID()
	if err != nil {
		return nil, dependencyErr("ledger tx id generation", err)
	}

	cert := &models.Certificate{
		ID:              uuid.New().String(),
		CertificateID:   code,
		HolderName:      req.HolderName,
		HolderEmail:     strings.ToLower(req.HolderEmail),
		CourseName:      req.CourseName,
		InstitutionID:   inst.ID,
		InstitutionName: inst.Name,
		IssueDate:       issueDate,
		Grade:           req.Grade,
		IssuerID:        identity.UserID,
		Status:          models.CertificateValid,
		LedgerTxID:      txID,
		Metadata:        req.Metadata,
	}

	// The store's uniqueness constraint is the only collision guard. A
	// conflict at 256 bits means regenerate and retry once, not fail.
	for attempt := 0; ; attempt++ {
		cert.Fingerprint, err = fingerprint.Generate(fingerprint.Data{
			HolderName:      cert.HolderName,
			HolderEmail:     cert.HolderEmail,
			CourseName:      cert.CourseName,
			InstitutionName: cert.InstitutionName,
			IssueDate:       req.IssueDate,
			IssuerID:        cert.IssuerID,
		})
		if err != nil {
			return nil, validationErr("fingerprint", err.Error())
		}

		err = cs.store.CreateCertificate(ctx, cert)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrConflict) && attempt == 0 {
			cs.logger.Warn("Fingerprint conflict on insert, regenerating",
				zap.String("certificate_id", cert.CertificateID))
			continue
		}
		if errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		return nil, dependencyErr("certificate insert", err)
	}

	// Denormalized counter; best effort.
	inst.CertificateCount++
	if err := cs.store.UpdateInstitution(ctx, inst); err != nil {
		cs.logger.Warn("Failed to bump institution certificate count",
			zap.String("institution_id", inst.ID), zap.Error(err))
	}

	cs.appendAudit(ctx, cert.ID, models.AuditIssued, identity.UserID,
		fmt.Sprintf("issued to %s for %s", cert.HolderEmail, cert.CourseName))

	cs.logger.Info("Certificate issued",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("fingerprint", fingerprint.Truncate(cert.Fingerprint, 8)),
		zap.String("institution_id", inst.ID),
		zap.String("issuer_id", identity.UserID),
	)
	cs.metrics.IncrementCounter("certificates.issued", nil)

	return cert, nil
}

// Revoke marks a certificate revoked. One-way: revoking an already revoked
// certificate returns ErrAlreadyRevoked.
func (cs *CertificateService) Revoke(ctx context.Context, identity *Identity, certificateID, reason string) (*models.Certificate, error) {
	if identity == nil {
		return nil, ErrNotAuthenticated
	}

	cert, err := cs.store.CertificateByID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, dependencyErr("certificate lookup", err)
	}

	if err := Authorize(identity, ActionRevokeCertificate, Resource{InstitutionID: cert.InstitutionID}); err != nil {
		return nil, err
	}
	if cert.Status == models.CertificateRevoked {
		return nil, ErrAlreadyRevoked
	}

	now := time.Now()
	cert.Status = models.CertificateRevoked
	cert.RevokedAt = &now
	cert.RevokedBy = &identity.UserID
	cert.RevocationReason = reason

	if err := cs.store.UpdateCertificate(ctx, cert); err != nil {
		return nil, dependencyErr("certificate revoke", err)
	}

	cs.appendAudit(ctx, cert.ID, models.AuditRevoked, identity.UserID, reason)

	cs.logger.Info("Certificate revoked",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("actor_id", identity.UserID),
		zap.String("reason", reason),
	)
	cs.metrics.IncrementCounter("certificates.revoked", nil)

	return cert, nil
}

func (cs *CertificateService) ByID(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := cs.store.CertificateByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, dependencyErr("certificate lookup", err)
	}
	return cert, nil
}

func (cs *CertificateService) ByHolderEmail(ctx context.Context, email string) ([]models.Certificate, error) {
	certs, err := cs.store.CertificatesByHolderEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, dependencyErr("holder lookup", err)
	}
	return certs, nil
}

// ListForInstitution returns the institution's certificates, newest first.
func (cs *CertificateService) ListForInstitution(ctx context.Context, identity *Identity, institutionID string) ([]models.Certificate, error) {
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	if err := Authorize(identity, ActionViewCertificates, Resource{InstitutionID: institutionID}); err != nil {
		return nil, err
	}
	certs, err := cs.store.CertificatesByInstitution(ctx, institutionID)
	if err != nil {
		return nil, dependencyErr("certificate list", err)
	}
	return certs, nil
}

// CertificateStats is the per-institution status breakdown.
type CertificateStats struct {
	Total     int `json:"total"`
	Valid     int `json:"valid"`
	Revoked   int `json:"revoked"`
	Suspended int `json:"suspended"`
}

func (cs *CertificateService) Stats(ctx context.Context, identity *Identity, institutionID string) (*CertificateStats, error) {
	certs, err := cs.ListForInstitution(ctx, identity, institutionID)
	if err != nil {
		return nil, err
	}

	stats := &CertificateStats{Total: len(certs)}
	for _, cert := range certs {
		switch cert.Status {
		case models.CertificateValid:
			stats.Valid++
		case models.CertificateRevoked:
			stats.Revoked++
		case models.CertificateSuspended:
			stats.Suspended++
		}
	}
	return stats, nil
}

// AuditTrail returns the audit entries recorded for a certificate.
func (cs *CertificateService) AuditTrail(ctx context.Context, certificateID string) ([]models.AuditLog, error) {
	entries, err := cs.store.AuditByCertificate(ctx, certificateID)
	if err != nil {
		return nil, dependencyErr("audit lookup", err)
	}
	return entries, nil
}

func (cs *CertificateService) appendAudit(ctx context.Context, certID string, action models.AuditAction, actorID, details string) {
	entry := &models.AuditLog{
		ID:            uuid.New().String(),
		CertificateID: certID,
		Action:        action,
		ActorID:       actorID,
		Details:       details,
		CreatedAt:     time.Now(),
	}
	if err := cs.store.AppendAudit(ctx, entry); err != nil {
		cs.logger.Warn("Failed to append audit entry",
			zap.String("certificate_id", certID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
