package services

import (
	"github.com/certchain/backend/internal/db/models"
)

// Action names a permission-checked operation.
type Action string

const (
	ActionIssueCertificate   Action = "issue certificate"
	ActionRevokeCertificate  Action = "revoke certificate"
	ActionViewCertificates   Action = "view institution certificates"
	ActionManageInstitutions Action = "manage institutions"
	ActionViewSystemStats    Action = "view system stats"
)

// Resource is what an action targets. InstitutionID is the owning
// institution for certificate actions; empty for system-wide actions.
type Resource struct {
	InstitutionID string
}

// Authorize is the single policy decision point. Every permission check in
// the service layer and the handlers goes through here so the rules live in
// one testable place.
//
// Policy:
//   - super admins manage institutions and see system stats, and may revoke
//     any certificate; they do not issue.
//   - institution admins and issuers issue and revoke for their own
//     institution only.
//   - viewers (and admins/issuers) may view their institution's
//     certificates; nobody sees another institution's.
func Authorize(identity *Identity, action Action, resource Resource) error {
	if identity == nil {
		return ErrNotAuthenticated
	}

	switch action {
	case ActionManageInstitutions, ActionViewSystemStats:
		if identity.IsSuperAdmin() {
			return nil
		}
		return &AuthorizationError{Action: string(action), Reason: "super admin access required"}

	case ActionIssueCertificate:
		if !identity.BelongsTo(resource.InstitutionID) {
			return &AuthorizationError{Action: string(action), Reason: "caller does not belong to the issuing institution"}
		}
		if identity.Role != models.RoleAdmin && identity.Role != models.RoleIssuer {
			return &AuthorizationError{Action: string(action), Reason: "role cannot issue certificates"}
		}
		return nil

	case ActionRevokeCertificate:
		if identity.IsSuperAdmin() {
			return nil
		}
		if !identity.BelongsTo(resource.InstitutionID) {
			return &AuthorizationError{Action: string(action), Reason: "caller does not belong to the owning institution"}
		}
		if identity.Role != models.RoleAdmin && identity.Role != models.RoleIssuer {
			return &AuthorizationError{Action: string(action), Reason: "role cannot revoke certificates"}
		}
		return nil

	case ActionViewCertificates:
		if identity.IsSuperAdmin() || identity.BelongsTo(resource.InstitutionID) {
			return nil
		}
		return &AuthorizationError{Action: string(action), Reason: "caller does not belong to the institution"}

	default:
		return &AuthorizationError{Action: string(action), Reason: "unknown action"}
	}
}
