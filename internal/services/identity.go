package services

import (
	"github.com/certchain/backend/internal/db/models"
)

// Identity is the authenticated caller as the core sees it: who they are,
// what they may do and which institution they act for.
type Identity struct {
	UserID        string
	Email         string
	FullName      string
	UserType      models.UserType
	Role          models.UserRole
	InstitutionID *string
}

func (id *Identity) IsSuperAdmin() bool {
	return id != nil && id.UserType == models.UserTypeSuperAdmin
}

func (id *Identity) BelongsTo(institutionID string) bool {
	return id != nil && id.InstitutionID != nil && *id.InstitutionID == institutionID
}

func identityFromUser(user *models.User) *Identity {
	return &Identity{
		UserID:        user.ID,
		Email:         user.Email,
		FullName:      user.FullName,
		UserType:      user.UserType,
		Role:          user.Role,
		InstitutionID: user.InstitutionID,
	}
}
