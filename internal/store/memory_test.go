package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certchain/backend/internal/db/models"
)

func newCert(id, fingerprint, code string) *models.Certificate {
	return &models.Certificate{
		ID:            id,
		CertificateID: code,
		Fingerprint:   fingerprint,
		HolderName:    "Jane Smith",
		HolderEmail:   "jane@example.com",
		InstitutionID: "inst-1",
		Status:        models.CertificateValid,
		CreatedAt:     time.Now(),
	}
}

func TestMemoryStore_CertificateUniqueness(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.CreateCertificate(ctx, newCert("c1", "f1", "CERT-1")))

	err := st.CreateCertificate(ctx, newCert("c2", "f1", "CERT-2"))
	assert.ErrorIs(t, err, ErrConflict)

	err = st.CreateCertificate(ctx, newCert("c3", "f3", "CERT-1"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_CertificateLookups(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.CreateCertificate(ctx, newCert("c1", "f1", "CERT-1")))

	byID, err := st.CertificateByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "f1", byID.Fingerprint)

	byFp, err := st.CertificateByFingerprint(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "c1", byFp.ID)

	_, err = st.CertificateByFingerprint(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.CreateCertificate(ctx, newCert("c1", "f1", "CERT-1")))

	first, err := st.CertificateByID(ctx, "c1")
	require.NoError(t, err)
	first.Status = models.CertificateRevoked

	second, err := st.CertificateByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CertificateValid, second.Status)
}

func TestMemoryStore_CertificatesByInstitutionNewestFirst(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	older := newCert("c1", "f1", "CERT-1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newCert("c2", "f2", "CERT-2")

	require.NoError(t, st.CreateCertificate(ctx, older))
	require.NoError(t, st.CreateCertificate(ctx, newer))

	certs, err := st.CertificatesByInstitution(ctx, "inst-1")
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, "c2", certs[0].ID)
	assert.Equal(t, "c1", certs[1].ID)
}

func TestMemoryStore_UserEmailCaseInsensitive(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "u1", Email: "admin@acme.edu"}))

	err := st.CreateUser(ctx, &models.User{ID: "u2", Email: "Admin@Acme.EDU"})
	assert.ErrorIs(t, err, ErrConflict)

	user, err := st.UserByEmail(ctx, "ADMIN@acme.edu")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestMemoryStore_InstitutionFilter(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.CreateInstitution(ctx, &models.Institution{ID: "i1", Name: "Acme University", Email: "acme@example.edu", Status: models.InstitutionActive}))
	require.NoError(t, st.CreateInstitution(ctx, &models.Institution{ID: "i2", Name: "Globex Institute", Email: "globex@example.edu", Status: models.InstitutionPending}))

	pending, err := st.ListInstitutions(ctx, InstitutionFilter{Status: models.InstitutionPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "i2", pending[0].ID)

	matched, err := st.ListInstitutions(ctx, InstitutionFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "i1", matched[0].ID)
}

func TestMemoryStore_VerificationsByCertificate(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	certID := "c1"
	require.NoError(t, st.AppendVerification(ctx, &models.VerificationRequest{ID: "v1", CertificateID: &certID, Result: models.VerificationValid}))
	require.NoError(t, st.AppendVerification(ctx, &models.VerificationRequest{ID: "v2", Result: models.VerificationNotFound}))

	reqs, err := st.VerificationsByCertificate(ctx, certID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "v1", reqs[0].ID)
	assert.Equal(t, 2, st.VerificationCount())
}
