package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/certchain/backend/internal/db/models"
)

func TestAuthorize(t *testing.T) {
	acmeID := "inst-acme"
	rivalID := "inst-rival"

	superAdmin := &Identity{UserID: "root", UserType: models.UserTypeSuperAdmin, Role: models.RoleAdmin}
	acmeAdmin := &Identity{UserID: "a1", UserType: models.UserTypeInstitutionUser, Role: models.RoleAdmin, InstitutionID: &acmeID}
	acmeIssuer := &Identity{UserID: "i1", UserType: models.UserTypeInstitutionUser, Role: models.RoleIssuer, InstitutionID: &acmeID}
	acmeViewer := &Identity{UserID: "v1", UserType: models.UserTypeInstitutionUser, Role: models.RoleViewer, InstitutionID: &acmeID}

	tests := []struct {
		name     string
		identity *Identity
		action   Action
		resource Resource
		allowed  bool
	}{
		{"nil identity", nil, ActionViewCertificates, Resource{InstitutionID: acmeID}, false},

		{"super admin manages institutions", superAdmin, ActionManageInstitutions, Resource{}, true},
		{"super admin views stats", superAdmin, ActionViewSystemStats, Resource{}, true},
		{"super admin revokes anywhere", superAdmin, ActionRevokeCertificate, Resource{InstitutionID: acmeID}, true},
		{"super admin does not issue", superAdmin, ActionIssueCertificate, Resource{InstitutionID: acmeID}, false},

		{"institution admin issues own", acmeAdmin, ActionIssueCertificate, Resource{InstitutionID: acmeID}, true},
		{"institution admin cannot issue elsewhere", acmeAdmin, ActionIssueCertificate, Resource{InstitutionID: rivalID}, false},
		{"institution admin cannot manage institutions", acmeAdmin, ActionManageInstitutions, Resource{}, false},
		{"institution admin cannot view stats", acmeAdmin, ActionViewSystemStats, Resource{}, false},
		{"institution admin revokes own", acmeAdmin, ActionRevokeCertificate, Resource{InstitutionID: acmeID}, true},

		{"issuer issues own", acmeIssuer, ActionIssueCertificate, Resource{InstitutionID: acmeID}, true},
		{"issuer revokes own", acmeIssuer, ActionRevokeCertificate, Resource{InstitutionID: acmeID}, true},
		{"issuer views own", acmeIssuer, ActionViewCertificates, Resource{InstitutionID: acmeID}, true},

		{"viewer views own", acmeViewer, ActionViewCertificates, Resource{InstitutionID: acmeID}, true},
		{"viewer cannot view others", acmeViewer, ActionViewCertificates, Resource{InstitutionID: rivalID}, false},
		{"viewer cannot issue", acmeViewer, ActionIssueCertificate, Resource{InstitutionID: acmeID}, false},
		{"viewer cannot revoke", acmeViewer, ActionRevokeCertificate, Resource{InstitutionID: acmeID}, false},

		{"unknown action denied", acmeAdmin, Action("launch missiles"), Resource{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.identity, tc.action, tc.resource)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
