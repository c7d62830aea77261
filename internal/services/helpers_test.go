package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/pkg/metrics"
)

type testEnv struct {
	store        *store.MemoryStore
	certs        *CertificateService
	verification *VerificationService
	institutions *InstitutionService
	auth         *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	logger := zap.NewNop()
	collector := metrics.NewCollector()

	auth := NewAuthService(st, time.Hour, 8, logger, collector)
	t.Cleanup(auth.Close)

	return &testEnv{
		store:        st,
		certs:        NewCertificateService(st, logger, collector),
		verification: NewVerificationService(st, logger, collector),
		institutions: NewInstitutionService(st, logger, collector),
		auth:         auth,
	}
}

func (env *testEnv) seedInstitution(t *testing.T, name string, status models.InstitutionStatus) *models.Institution {
	t.Helper()

	inst := &models.Institution{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     name + "@example.edu",
		Status:    status,
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.store.CreateInstitution(context.Background(), inst))
	return inst
}

func (env *testEnv) seedUser(t *testing.T, email string, role models.UserRole, institutionID *string) *Identity {
	t.Helper()

	user := &models.User{
		ID:            uuid.New().String(),
		Email:         email,
		FullName:      "Test User",
		PasswordHash:  "unused",
		UserType:      models.UserTypeInstitutionUser,
		Role:          role,
		InstitutionID: institutionID,
		ActiveStatus:  true,
	}
	require.NoError(t, env.store.CreateUser(context.Background(), user))
	return identityFromUser(user)
}

func (env *testEnv) seedSuperAdmin(t *testing.T) *Identity {
	t.Helper()

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        "root@example.com",
		FullName:     "Platform Administrator",
		PasswordHash: "unused",
		UserType:     models.UserTypeSuperAdmin,
		Role:         models.RoleAdmin,
		ActiveStatus: true,
	}
	require.NoError(t, env.store.CreateUser(context.Background(), user))
	return identityFromUser(user)
}

func (env *testEnv) issueCertificate(t *testing.T, identity *Identity, inst *models.Institution) *models.Certificate {
	t.Helper()

	cert, err := env.certs.Issue(context.Background(), identity, IssueRequest{
		HolderName:    "Jane Smith",
		HolderEmail:   "jane@example.com",
		CourseName:    "Distributed Systems",
		InstitutionID: inst.ID,
		IssueDate:     "2026-06-01",
		Grade:         "A",
	})
	require.NoError(t, err)
	return cert
}
