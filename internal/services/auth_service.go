package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/internal/utils"
	"github.com/certchain/backend/pkg/metrics"
)

var ErrInvalidSession = errors.New("invalid session token")

var ErrInvalidCredentials = errors.New("invalid email or password")

type sessionData struct {
	UserID    string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

type sessionStore struct {
	sessions map[string]sessionData
	mutex    sync.RWMutex
}

// AuthService owns credentials and sessions. Sessions live in memory with a
// TTL and a background sweep; the identity handed out is read fresh from the
// user store on every request so role or institution changes take effect
// without re-login.
type AuthService struct {
	store      store.Store
	sessions   *sessionStore
	sessionTTL time.Duration
	minPassLen int
	logger     *zap.Logger
	metrics    *metrics.Collector
	stopChan   chan struct{}
}

func NewAuthService(st store.Store, sessionTTL time.Duration, minPassLen int, logger *zap.Logger, collector *metrics.Collector) *AuthService {
	as := &AuthService{
		store:      st,
		sessions:   &sessionStore{sessions: make(map[string]sessionData)},
		sessionTTL: sessionTTL,
		minPassLen: minPassLen,
		logger:     logger.With(zap.String("service", "auth_service")),
		metrics:    collector,
		stopChan:   make(chan struct{}),
	}

	go as.startBackgroundCleanup()

	return as
}

func (as *AuthService) startBackgroundCleanup() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-as.stopChan:
			return
		case <-ticker.C:
			as.cleanupExpiredSessions()
		}
	}
}

func (as *AuthService) cleanupExpiredSessions() {
	as.sessions.mutex.Lock()
	defer as.sessions.mutex.Unlock()

	now := time.Now()
	for token, session := range as.sessions.sessions {
		if now.After(session.ExpiresAt) {
			delete(as.sessions.sessions, token)
			as.metrics.IncrementCounter("auth.sessions_expired", nil)
		}
	}
}

// Close stops the session sweeper.
func (as *AuthService) Close() {
	close(as.stopChan)
}

// SignUpRequest registers an institution together with its first admin user.
type SignUpRequest struct {
	InstitutionName  string
	InstitutionEmail string
	Website          string
	Address          string
	Phone            string
	AdminEmail       string
	AdminPassword    string
	AdminFullName    string
}

// SignUpInstitution creates the institution in the pending state plus its
// admin user in one call. Certificates cannot be issued until a super admin
// approves the institution.
func (as *AuthService) SignUpInstitution(ctx context.Context, req SignUpRequest) (*models.Institution, *models.User, error) {
	switch {
	case strings.TrimSpace(req.InstitutionName) == "":
		return nil, nil, validationErr("institution_name", "required")
	case strings.TrimSpace(req.InstitutionEmail) == "":
		return nil, nil, validationErr("institution_email", "required")
	case strings.TrimSpace(req.AdminEmail) == "":
		return nil, nil, validationErr("admin_email", "required")
	case strings.TrimSpace(req.AdminFullName) == "":
		return nil, nil, validationErr("admin_full_name", "required")
	case len(req.AdminPassword) < as.minPassLen:
		return nil, nil, validationErr("admin_password", "too short")
	}

	inst := &models.Institution{
		ID:      uuid.New().String(),
		Name:    req.InstitutionName,
		Email:   strings.ToLower(req.InstitutionEmail),
		Website: req.Website,
		Address: req.Address,
		Phone:   req.Phone,
		Status:  models.InstitutionPending,
	}
	if err := as.store.CreateInstitution(ctx, inst); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, err
		}
		return nil, nil, dependencyErr("institution signup", err)
	}

	passHash, err := utils.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, nil, dependencyErr("password hashing", err)
	}

	user := &models.User{
		ID:            uuid.New().String(),
		Email:         strings.ToLower(req.AdminEmail),
		FullName:      req.AdminFullName,
		PasswordHash:  passHash,
		UserType:      models.UserTypeInstitutionUser,
		Role:          models.RoleAdmin,
		InstitutionID: &inst.ID,
		ActiveStatus:  true,
	}
	if err := as.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, err
		}
		return nil, nil, dependencyErr("admin user creation", err)
	}

	as.logger.Info("Institution signed up",
		zap.String("institution_id", inst.ID),
		zap.String("institution_name", inst.Name),
		zap.String("admin_user_id", user.ID),
	)
	as.metrics.IncrementCounter("auth.institution_signups", nil)

	return inst, user, nil
}

// SignIn checks the credential and returns the identity together with a new
// session token.
func (as *AuthService) SignIn(ctx context.Context, email, password, ipAddress, userAgent string) (*Identity, string, error) {
	user, err := as.store.UserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", dependencyErr("sign in", err)
	}

	if !utils.VerifyPassword(user.PasswordHash, password) {
		as.logger.Warn("Invalid password", zap.String("email", email), zap.String("ip_address", ipAddress))
		return nil, "", ErrInvalidCredentials
	}
	if !user.ActiveStatus {
		as.logger.Warn("Inactive account login", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	as.sessions.mutex.Lock()
	as.sessions.sessions[token] = sessionData{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(as.sessionTTL),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	as.sessions.mutex.Unlock()

	user.LastLogin = time.Now()
	if err := as.store.UpdateUser(ctx, user); err != nil {
		as.logger.Warn("Failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	as.logger.Info("Created new session",
		zap.String("user_id", user.ID),
		zap.String("token", token[:8]+"..."),
		zap.String("ip_address", ipAddress),
	)
	as.metrics.IncrementCounter("auth.sign_ins", nil)

	return identityFromUser(user), token, nil
}

// IdentityFromToken resolves a session token to the caller's identity.
func (as *AuthService) IdentityFromToken(ctx context.Context, token string) (*Identity, error) {
	as.sessions.mutex.RLock()
	session, exists := as.sessions.sessions[token]
	as.sessions.mutex.RUnlock()
	if !exists || time.Now().After(session.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	user, err := as.store.UserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, dependencyErr("session lookup", err)
	}
	if !user.ActiveStatus {
		return nil, ErrInvalidSession
	}

	return identityFromUser(user), nil
}

// SignOut drops the session. Unknown tokens are a no-op.
func (as *AuthService) SignOut(token string) {
	as.sessions.mutex.Lock()
	delete(as.sessions.sessions, token)
	as.sessions.mutex.Unlock()
}

// UpdatePassword replaces the caller's password after checking the current
// one.
func (as *AuthService) UpdatePassword(ctx context.Context, identity *Identity, currentPassword, newPassword string) error {
	if identity == nil {
		return ErrNotAuthenticated
	}
	if len(newPassword) < as.minPassLen {
		return validationErr("new_password", "too short")
	}

	user, err := as.store.UserByID(ctx, identity.UserID)
	if err != nil {
		return dependencyErr("password update", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}

	passHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return dependencyErr("password hashing", err)
	}
	user.PasswordHash = passHash
	if err := as.store.UpdateUser(ctx, user); err != nil {
		return dependencyErr("password update", err)
	}

	as.logger.Info("Password updated", zap.String("user_id", user.ID))
	return nil
}
