package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/fingerprint"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/pkg/metrics"
)

// Requester is the best-effort metadata captured about whoever asked for a
// verification.
type Requester struct {
	IPAddress string
	UserAgent string
}

// VerificationOutcome is the answer to one verify call.
type VerificationOutcome struct {
	Status      models.VerificationResult `json:"status"`
	IsValid     bool                      `json:"is_valid"`
	Message     string                    `json:"message"`
	Certificate *models.Certificate       `json:"certificate,omitempty"`
	VerifiedAt  time.Time                 `json:"verified_at"`
}

// VerificationService classifies presented fingerprints against the
// certificate store and records every attempt.
type VerificationService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewVerificationService(st store.Store, logger *zap.Logger, collector *metrics.Collector) *VerificationService {
	return &VerificationService{
		store:   st,
		logger:  logger.With(zap.String("service", "verification_service")),
		metrics: collector,
	}
}

// Verify classifies a presented fingerprint. It never returns an error: a
// store outage is reported as the distinct "error" status rather than being
// conflated with not_found, and a presented token that cannot be the output
// of the generator short-circuits to not_found without a store call.
//
// Every call appends exactly one verification attempt. That write is fire
// and forget: its failure is logged and swallowed, never surfaced.
func (vs *VerificationService) Verify(ctx context.Context, presented string, requester Requester) *VerificationOutcome {
	start := time.Now()
	defer func() {
		vs.metrics.ObserveLatency("verify.duration", time.Since(start))
	}()

	outcome := &VerificationOutcome{VerifiedAt: time.Now()}

	if !fingerprint.Valid(presented) {
		outcome.Status = models.VerificationNotFound
		outcome.Message = "Certificate not found in the database"
		vs.record(ctx, presented, nil, outcome.Status, requester)
		return outcome
	}

	cert, err := vs.store.CertificateByFingerprint(ctx, presented)
	switch {
	case errors.Is(err, store.ErrNotFound):
		outcome.Status = models.VerificationNotFound
		outcome.Message = "Certificate not found in the database"

	case err != nil:
		vs.logger.Error("Certificate lookup failed", zap.Error(err),
			zap.String("fingerprint", fingerprint.Truncate(presented, 8)))
		outcome.Status = models.VerificationError
		outcome.Message = "Verification is temporarily unavailable"

	case cert.Status == models.CertificateRevoked:
		outcome.Status = models.VerificationRevoked
		outcome.Message = "This certificate has been revoked"
		outcome.Certificate = cert

	case cert.Status == models.CertificateSuspended:
		outcome.Status = models.VerificationInvalid
		outcome.Message = "This certificate is currently suspended"
		outcome.Certificate = cert

	default:
		outcome.Status = models.VerificationValid
		outcome.IsValid = true
		outcome.Message = "Certificate is valid and verified"
		outcome.Certificate = cert
	}

	var certID *string
	if outcome.Certificate != nil {
		certID = &outcome.Certificate.ID
	}
	vs.record(ctx, presented, certID, outcome.Status, requester)

	vs.metrics.IncrementCounter("verify.results", map[string]string{"status": string(outcome.Status)})

	return outcome
}

// History returns the recorded verification attempts for a certificate in
// chronological order.
func (vs *VerificationService) History(ctx context.Context, certificateID string) ([]models.VerificationRequest, error) {
	reqs, err := vs.store.VerificationsByCertificate(ctx, certificateID)
	if err != nil {
		return nil, dependencyErr("verification history", err)
	}
	return reqs, nil
}

func (vs *VerificationService) record(ctx context.Context, presented string, certID *string, result models.VerificationResult, requester Requester) {
	req := &models.VerificationRequest{
		ID:            uuid.New().String(),
		Fingerprint:   presented,
		CertificateID: certID,
		Result:        result,
		IPAddress:     requester.IPAddress,
		UserAgent:     requester.UserAgent,
		VerifiedAt:    time.Now(),
	}
	if err := vs.store.AppendVerification(ctx, req); err != nil {
		vs.logger.Warn("Failed to record verification attempt",
			zap.String("result", string(result)), zap.Error(err))
	}
}
