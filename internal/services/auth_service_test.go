package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/internal/utils"
)

func signUpAcme(t *testing.T, env *testEnv) (*models.Institution, *models.User) {
	t.Helper()

	inst, admin, err := env.auth.SignUpInstitution(context.Background(), SignUpRequest{
		InstitutionName:  "Acme University",
		InstitutionEmail: "registrar@acme.edu",
		AdminEmail:       "Admin@Acme.EDU",
		AdminPassword:    "correct horse battery",
		AdminFullName:    "Ada Admin",
	})
	require.NoError(t, err)
	return inst, admin
}

func TestSignUpInstitution(t *testing.T) {
	env := newTestEnv(t)

	inst, admin := signUpAcme(t, env)

	assert.Equal(t, models.InstitutionPending, inst.Status)
	assert.Equal(t, "admin@acme.edu", admin.Email)
	assert.Equal(t, models.UserTypeInstitutionUser, admin.UserType)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	require.NotNil(t, admin.InstitutionID)
	assert.Equal(t, inst.ID, *admin.InstitutionID)
	assert.True(t, utils.VerifyPassword(admin.PasswordHash, "correct horse battery"))
}

func TestSignUpInstitution_ShortPassword(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.SignUpInstitution(context.Background(), SignUpRequest{
		InstitutionName:  "Acme",
		InstitutionEmail: "registrar@acme.edu",
		AdminEmail:       "admin@acme.edu",
		AdminPassword:    "short",
		AdminFullName:    "Ada Admin",
	})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSignUpInstitution_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	signUpAcme(t, env)

	_, _, err := env.auth.SignUpInstitution(context.Background(), SignUpRequest{
		InstitutionName:  "Acme Again",
		InstitutionEmail: "registrar@acme.edu",
		AdminEmail:       "other@acme.edu",
		AdminPassword:    "correct horse battery",
		AdminFullName:    "Bea Admin",
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)
	inst, _ := signUpAcme(t, env)

	identity, token, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "203.0.113.9", "cli/1.0")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, identity.InstitutionID)
	assert.Equal(t, inst.ID, *identity.InstitutionID)

	resolved, err := env.auth.IdentityFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, resolved.UserID)
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	signUpAcme(t, env)

	_, _, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "wrong", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.SignIn(context.Background(), "ghost@nowhere.edu", "whatever", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_InactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	_, admin := signUpAcme(t, env)

	admin.ActiveStatus = false
	require.NoError(t, env.store.UpdateUser(context.Background(), admin))

	_, _, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOut(t *testing.T) {
	env := newTestEnv(t)
	signUpAcme(t, env)

	_, token, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "", "")
	require.NoError(t, err)

	env.auth.SignOut(token)

	_, err = env.auth.IdentityFromToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestIdentityFromToken_ReflectsUserChanges(t *testing.T) {
	env := newTestEnv(t)
	_, admin := signUpAcme(t, env)

	_, token, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "", "")
	require.NoError(t, err)

	admin.Role = models.RoleViewer
	require.NoError(t, env.store.UpdateUser(context.Background(), admin))

	resolved, err := env.auth.IdentityFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, resolved.Role)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	signUpAcme(t, env)

	identity, _, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "", "")
	require.NoError(t, err)

	require.NoError(t, env.auth.UpdatePassword(context.Background(), identity, "correct horse battery", "even more correct horse"))

	_, _, err = env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.auth.SignIn(context.Background(), "admin@acme.edu", "even more correct horse", "", "")
	assert.NoError(t, err)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	env := newTestEnv(t)
	signUpAcme(t, env)

	identity, _, err := env.auth.SignIn(context.Background(), "admin@acme.edu", "correct horse battery", "", "")
	require.NoError(t, err)

	err = env.auth.UpdatePassword(context.Background(), identity, "wrong", "whatever works here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
