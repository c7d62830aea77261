package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/store"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	inst, err := env.institutions.Register(context.Background(), RegisterInstitutionRequest{
		Name:  "Acme University",
		Email: "Registrar@Acme.EDU",
	})
	require.NoError(t, err)

	assert.Equal(t, models.InstitutionPending, inst.Status)
	assert.Equal(t, "registrar@acme.edu", inst.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	req := RegisterInstitutionRequest{Name: "Acme", Email: "registrar@acme.edu"}
	_, err := env.institutions.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = env.institutions.Register(context.Background(), req)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestLifecycle_ApproveThenSuspendThenReactivate(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedSuperAdmin(t)
	inst := env.seedInstitution(t, "acme", models.InstitutionPending)

	approved, err := env.institutions.Approve(context.Background(), root, inst.ID, "docs checked")
	require.NoError(t, err)
	assert.Equal(t, models.InstitutionActive, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, root.UserID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	suspended, err := env.institutions.Suspend(context.Background(), root, inst.ID, "complaint under review")
	require.NoError(t, err)
	assert.Equal(t, models.InstitutionSuspended, suspended.Status)
	// Suspension keeps the original approval stamp.
	require.NotNil(t, suspended.ApprovedBy)
	assert.Equal(t, *approved.ApprovedAt, *suspended.ApprovedAt)

	reactivated, err := env.institutions.Reactivate(context.Background(), root, inst.ID, "cleared")
	require.NoError(t, err)
	assert.Equal(t, models.InstitutionActive, reactivated.Status)
}

func TestLifecycle_IllegalTransitions(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedSuperAdmin(t)

	tests := []struct {
		name string
		from models.InstitutionStatus
		move func(id string) error
	}{
		{"suspend pending", models.InstitutionPending, func(id string) error {
			_, err := env.institutions.Suspend(context.Background(), root, id, "")
			return err
		}},
		{"approve active", models.InstitutionActive, func(id string) error {
			_, err := env.institutions.Approve(context.Background(), root, id, "")
			return err
		}},
		{"deactivate suspended", models.InstitutionSuspended, func(id string) error {
			_, err := env.institutions.Deactivate(context.Background(), root, id, "")
			return err
		}},
		{"reactivate deactivated", models.InstitutionDeactivated, func(id string) error {
			_, err := env.institutions.Reactivate(context.Background(), root, id, "")
			return err
		}},
		{"reject active", models.InstitutionActive, func(id string) error {
			_, err := env.institutions.Reject(context.Background(), root, id, "")
			return err
		}},
	}

	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inst := env.seedInstitution(t, "inst"+string(rune('a'+i)), tc.from)
			err := tc.move(inst.ID)
			var valErr *ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}

func TestLifecycle_RejectPending(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedSuperAdmin(t)
	inst := env.seedInstitution(t, "acme", models.InstitutionPending)

	rejected, err := env.institutions.Reject(context.Background(), root, inst.ID, "incomplete paperwork")
	require.NoError(t, err)
	assert.Equal(t, models.InstitutionDeactivated, rejected.Status)
	assert.Equal(t, "incomplete paperwork", rejected.ApprovalNotes)
}

func TestLifecycle_DeactivateActive(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedSuperAdmin(t)
	inst := env.seedInstitution(t, "acme", models.InstitutionActive)

	deactivated, err := env.institutions.Deactivate(context.Background(), root, inst.ID, "closed down")
	require.NoError(t, err)
	assert.Equal(t, models.InstitutionDeactivated, deactivated.Status)
}

func TestLifecycle_RequiresSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	inst := env.seedInstitution(t, "acme", models.InstitutionPending)
	admin := env.seedUser(t, "admin@acme.edu", models.RoleAdmin, &inst.ID)

	_, err := env.institutions.Approve(context.Background(), admin, inst.ID, "")
	var authzErr *AuthorizationError
	require.ErrorAs(t, err, &authzErr)

	_, err = env.institutions.List(context.Background(), admin, store.InstitutionFilter{})
	require.ErrorAs(t, err, &authzErr)
}

func TestList_Filters(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedSuperAdmin(t)
	env.seedInstitution(t, "acme", models.InstitutionActive)
	env.seedInstitution(t, "globex", models.InstitutionPending)
	env.seedInstitution(t, "initech", models.InstitutionActive)

	active, err := env.institutions.List(context.Background(), root, store.InstitutionFilter{Status: models.InstitutionActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	matched, err := env.institutions.List(context.Background(), root, store.InstitutionFilter{Search: "glob"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "globex", matched[0].Name)
}

func TestSystemStats(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedSuperAdmin(t)

	active := env.seedInstitution(t, "acme", models.InstitutionActive)
	env.seedInstitution(t, "globex", models.InstitutionPending)

	admin := env.seedUser(t, "admin@acme.edu", models.RoleAdmin, &active.ID)
	env.issueCertificate(t, admin, active)

	stats, err := env.institutions.Stats(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalInstitutions)
	assert.Equal(t, 1, stats.ActiveInstitutions)
	assert.Equal(t, 1, stats.PendingInstitutions)
	assert.Equal(t, int64(1), stats.TotalCertificates)
}
