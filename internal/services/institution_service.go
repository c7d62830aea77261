package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/pkg/metrics"
)

// institutionTransitions is the allowed lifecycle matrix. Registration is
// the only way in (pending); every move afterwards is a super-admin action.
var institutionTransitions = map[models.InstitutionStatus][]models.InstitutionStatus{
	models.InstitutionPending:   {models.InstitutionActive, models.InstitutionDeactivated},
	models.InstitutionActive:    {models.InstitutionSuspended, models.InstitutionDeactivated},
	models.InstitutionSuspended: {models.InstitutionActive},
}

func transitionAllowed(from, to models.InstitutionStatus) bool {
	for _, allowed := range institutionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InstitutionService owns registration and the super-admin lifecycle.
type InstitutionService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewInstitutionService(st store.Store, logger *zap.Logger, collector *metrics.Collector) *InstitutionService {
	return &InstitutionService{
		store:   st,
		logger:  logger.With(zap.String("service", "institution_service")),
		metrics: collector,
	}
}

type RegisterInstitutionRequest struct {
	Name    string
	Email   string
	Website string
	Address string
	Phone   string
}

// Register creates an institution in the pending state. It issues nothing
// until approved.
func (is *InstitutionService) Register(ctx context.Context, req RegisterInstitutionRequest) (*models.Institution, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, validationErr("name", "required")
	case strings.TrimSpace(req.Email) == "":
		return nil, validationErr("email", "required")
	case !strings.Contains(req.Email, "@"):
		return nil, validationErr("email", "not an email address")
	}

	inst := &models.Institution{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Email:   strings.ToLower(req.Email),
		Website: req.Website,
		Address: req.Address,
		Phone:   req.Phone,
		Status:  models.InstitutionPending,
	}
	if err := is.store.CreateInstitution(ctx, inst); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		return nil, dependencyErr("institution registration", err)
	}

	is.logger.Info("Institution registered",
		zap.String("institution_id", inst.ID),
		zap.String("name", inst.Name),
	)
	is.metrics.IncrementCounter("institutions.registered", nil)

	return inst, nil
}

// Approve moves a pending (or suspended) institution to active.
func (is *InstitutionService) Approve(ctx context.Context, identity *Identity, institutionID, notes string) (*models.Institution, error) {
	return is.transition(ctx, identity, institutionID, models.InstitutionActive, notes, true)
}

// Reject deactivates a pending institution.
func (is *InstitutionService) Reject(ctx context.Context, identity *Identity, institutionID, notes string) (*models.Institution, error) {
	inst, err := is.get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if inst.Status != models.InstitutionPending {
		return nil, validationErr("status", fmt.Sprintf("cannot reject a %s institution", inst.Status))
	}
	return is.transition(ctx, identity, institutionID, models.InstitutionDeactivated, notes, true)
}

// Suspend takes an active institution out of service, keeping its records.
func (is *InstitutionService) Suspend(ctx context.Context, identity *Identity, institutionID, reason string) (*models.Institution, error) {
	return is.transition(ctx, identity, institutionID, models.InstitutionSuspended, reason, false)
}

// Reactivate returns a suspended institution to active.
func (is *InstitutionService) Reactivate(ctx context.Context, identity *Identity, institutionID, notes string) (*models.Institution, error) {
	return is.transition(ctx, identity, institutionID, models.InstitutionActive, notes, true)
}

// Deactivate retires an active institution.
func (is *InstitutionService) Deactivate(ctx context.Context, identity *Identity, institutionID, notes string) (*models.Institution, error) {
	return is.transition(ctx, identity, institutionID, models.InstitutionDeactivated, notes, true)
}

func (is *InstitutionService) get(ctx context.Context, institutionID string) (*models.Institution, error) {
	inst, err := is.store.InstitutionByID(ctx, institutionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, dependencyErr("institution lookup", err)
	}
	return inst, nil
}

// transition applies one lifecycle move. stampApproval controls whether the
// approver/timestamp columns are rewritten; a suspension keeps the prior
// approval record intact.
func (is *InstitutionService) transition(ctx context.Context, identity *Identity, institutionID string, to models.InstitutionStatus, notes string, stampApproval bool) (*models.Institution, error) {
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	if err := Authorize(identity, ActionManageInstitutions, Resource{}); err != nil {
		return nil, err
	}

	inst, err := is.get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(inst.Status, to) {
		return nil, validationErr("status", fmt.Sprintf("cannot move institution from %s to %s", inst.Status, to))
	}

	from := inst.Status
	inst.Status = to
	inst.ApprovalNotes = notes
	if stampApproval {
		now := time.Now()
		inst.ApprovedBy = &identity.UserID
		inst.ApprovedAt = &now
	}

	if err := is.store.UpdateInstitution(ctx, inst); err != nil {
		return nil, dependencyErr("institution update", err)
	}

	is.logger.Info("Institution status changed",
		zap.String("institution_id", inst.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", identity.UserID),
	)
	is.metrics.IncrementCounter("institutions.transitions", map[string]string{"to": string(to)})

	return inst, nil
}

// List returns institutions matching the filter; super admin only.
func (is *InstitutionService) List(ctx context.Context, identity *Identity, filter store.InstitutionFilter) ([]models.Institution, error) {
	if err := Authorize(identity, ActionManageInstitutions, Resource{}); err != nil {
		return nil, err
	}
	insts, err := is.store.ListInstitutions(ctx, filter)
	if err != nil {
		return nil, dependencyErr("institution list", err)
	}
	return insts, nil
}

// ByID is a plain lookup with no privilege requirement; institution profiles
// are public.
func (is *InstitutionService) ByID(ctx context.Context, institutionID string) (*models.Institution, error) {
	return is.get(ctx, institutionID)
}

// SystemStats is the super-admin dashboard summary.
type SystemStats struct {
	TotalInstitutions   int   `json:"total_institutions"`
	ActiveInstitutions  int   `json:"active_institutions"`
	PendingInstitutions int   `json:"pending_institutions"`
	TotalCertificates   int64 `json:"total_certificates"`
}

func (is *InstitutionService) Stats(ctx context.Context, identity *Identity) (*SystemStats, error) {
	if err := Authorize(identity, ActionViewSystemStats, Resource{}); err != nil {
		return nil, err
	}

	insts, err := is.store.ListInstitutions(ctx, store.InstitutionFilter{})
	if err != nil {
		return nil, dependencyErr("system stats", err)
	}

	stats := &SystemStats{TotalInstitutions: len(insts)}
	for _, inst := range insts {
		switch inst.Status {
		case models.InstitutionActive:
			stats.ActiveInstitutions++
		case models.InstitutionPending:
			stats.PendingInstitutions++
		}
		stats.TotalCertificates += inst.CertificateCount
	}
	return stats, nil
}
