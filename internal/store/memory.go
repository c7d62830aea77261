package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/certchain/backend/internal/db/models"
)

// MemoryStore implements Store on mutex-guarded maps. It enforces the same
// uniqueness rules the postgres schema does so tests exercise the conflict
// path without a database.
type MemoryStore struct {
	certificates  map[string]*models.Certificate // by id
	byFingerprint map[string]string              // fingerprint -> id
	byCertCode    map[string]string              // certificate code -> id
	institutions  map[string]*models.Institution
	users         map[string]*models.User
	verifications []models.VerificationRequest
	audits        []models.AuditLog
	mu            sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		certificates:  make(map[string]*models.Certificate),
		byFingerprint: make(map[string]string),
		byCertCode:    make(map[string]string),
		institutions:  make(map[string]*models.Institution),
		users:         make(map[string]*models.User),
	}
}

func (m *MemoryStore) CreateCertificate(_ context.Context, cert *models.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byFingerprint[cert.Fingerprint]; exists {
		return fmt.Errorf("%w: fingerprint", ErrConflict)
	}
	if _, exists := m.byCertCode[cert.CertificateID]; exists {
		return fmt.Errorf("%w: certificate_id", ErrConflict)
	}

	copied := *cert
	m.certificates[cert.ID] = &copied
	m.byFingerprint[cert.Fingerprint] = cert.ID
	m.byCertCode[cert.CertificateID] = cert.ID
	return nil
}

func (m *MemoryStore) CertificateByID(_ context.Context, id string) (*models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cert, exists := m.certificates[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *cert
	return &copied, nil
}

func (m *MemoryStore) CertificateByFingerprint(_ context.Context, fingerprint string) (*models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byFingerprint[fingerprint]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *m.certificates[id]
	return &copied, nil
}

func (m *MemoryStore) CertificatesByHolderEmail(_ context.Context, email string) ([]models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var certs []models.Certificate
	for _, cert := range m.certificates {
		if cert.HolderEmail == email {
			certs = append(certs, *cert)
		}
	}
	sortCertificates(certs)
	return certs, nil
}

func (m *MemoryStore) CertificatesByInstitution(_ context.Context, institutionID string) ([]models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var certs []models.Certificate
	for _, cert := range m.certificates {
		if cert.InstitutionID == institutionID {
			certs = append(certs, *cert)
		}
	}
	sortCertificates(certs)
	return certs, nil
}

func (m *MemoryStore) UpdateCertificate(_ context.Context, cert *models.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.certificates[cert.ID]; !exists {
		return ErrNotFound
	}
	copied := *cert
	m.certificates[cert.ID] = &copied
	return nil
}

func (m *MemoryStore) CreateInstitution(_ context.Context, inst *models.Institution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.institutions {
		if strings.EqualFold(existing.Email, inst.Email) {
			return fmt.Errorf("%w: email", ErrConflict)
		}
	}
	copied := *inst
	m.institutions[inst.ID] = &copied
	return nil
}

func (m *MemoryStore) InstitutionByID(_ context.Context, id string) (*models.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, exists := m.institutions[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *inst
	return &copied, nil
}

func (m *MemoryStore) InstitutionByEmail(_ context.Context, email string) (*models.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, inst := range m.institutions {
		if strings.EqualFold(inst.Email, email) {
			copied := *inst
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListInstitutions(_ context.Context, filter InstitutionFilter) ([]models.Institution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var insts []models.Institution
	for _, inst := range m.institutions {
		if filter.Status != "" && inst.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(inst.Name), search) &&
			!strings.Contains(strings.ToLower(inst.Email), search) {
			continue
		}
		insts = append(insts, *inst)
	}
	sort.Slice(insts, func(i, j int) bool {
		return insts[i].CreatedAt.After(insts[j].CreatedAt)
	})
	return insts, nil
}

func (m *MemoryStore) UpdateInstitution(_ context.Context, inst *models.Institution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.institutions[inst.ID]; !exists {
		return ErrNotFound
	}
	copied := *inst
	m.institutions[inst.ID] = &copied
	return nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("%w: email", ErrConflict)
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MemoryStore) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return ErrNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MemoryStore) AppendVerification(_ context.Context, req *models.VerificationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, *req)
	return nil
}

func (m *MemoryStore) VerificationsByCertificate(_ context.Context, certificateID string) ([]models.VerificationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reqs []models.VerificationRequest
	for _, req := range m.verifications {
		if req.CertificateID != nil && *req.CertificateID == certificateID {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

// VerificationCount reports the total number of recorded attempts; used by
// tests and the system stats endpoint.
func (m *MemoryStore) VerificationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.verifications)
}

func (m *MemoryStore) AppendAudit(_ context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, *entry)
	return nil
}

func (m *MemoryStore) AuditByCertificate(_ context.Context, certificateID string) ([]models.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []models.AuditLog
	for _, entry := range m.audits {
		if entry.CertificateID == certificateID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func sortCertificates(certs []models.Certificate) {
	sort.Slice(certs, func(i, j int) bool {
		return certs[i].CreatedAt.After(certs[j].CreatedAt)
	})
}
