package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/certchain/backend/internal/db/models"
)

const pgUniqueViolation = "23505"

// GormStore implements Store on a gorm database handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translate maps driver errors onto the store sentinels so callers never see
// gorm or pgx types.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (s *GormStore) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	return translate(s.db.WithContext(ctx).Create(cert).Error)
}

func (s *GormStore) CertificateByID(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (s *GormStore) CertificateByFingerprint(ctx context.Context, fingerprint string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.WithContext(ctx).First(&cert, "fingerprint = ?", fingerprint).Error; err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (s *GormStore) CertificatesByHolderEmail(ctx context.Context, email string) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := s.db.WithContext(ctx).
		Where("holder_email = ?", email).
		Order("created_at DESC").
		Find(&certs).Error
	return certs, translate(err)
}

func (s *GormStore) CertificatesByInstitution(ctx context.Context, institutionID string) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := s.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("created_at DESC").
		Find(&certs).Error
	return certs, translate(err)
}

func (s *GormStore) UpdateCertificate(ctx context.Context, cert *models.Certificate) error {
	return translate(s.db.WithContext(ctx).Save(cert).Error)
}

func (s *GormStore) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	return translate(s.db.WithContext(ctx).Create(inst).Error)
}

func (s *GormStore) InstitutionByID(ctx context.Context, id string) (*models.Institution, error) {
	var inst models.Institution
	if err := s.db.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &inst, nil
}

func (s *GormStore) InstitutionByEmail(ctx context.Context, email string) (*models.Institution, error) {
	var inst models.Institution
	if err := s.db.WithContext(ctx).First(&inst, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &inst, nil
}

func (s *GormStore) ListInstitutions(ctx context.Context, filter InstitutionFilter) ([]models.Institution, error) {
	query := s.db.WithContext(ctx).Model(&models.Institution{}).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var insts []models.Institution
	err := query.Find(&insts).Error
	return insts, translate(err)
}

func (s *GormStore) UpdateInstitution(ctx context.Context, inst *models.Institution) error {
	return translate(s.db.WithContext(ctx).Save(inst).Error)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

func (s *GormStore) AppendVerification(ctx context.Context, req *models.VerificationRequest) error {
	return translate(s.db.WithContext(ctx).Create(req).Error)
}

func (s *GormStore) VerificationsByCertificate(ctx context.Context, certificateID string) ([]models.VerificationRequest, error) {
	var reqs []models.VerificationRequest
	err := s.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("verified_at ASC").
		Find(&reqs).Error
	return reqs, translate(err)
}

func (s *GormStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *GormStore) AuditByCertificate(ctx context.Context, certificateID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, translate(err)
}
