package models

import (
	"time"
)

type UserType string

const (
	UserTypeSuperAdmin      UserType = "super_admin"
	UserTypeInstitutionUser UserType = "institution_user"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleIssuer UserRole = "issuer"
	RoleViewer UserRole = "viewer"
)

// User carries both the credential and the authorization profile. Super
// admins have no institution linkage; institution users always do.
type User struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName      string    `gorm:"not null" json:"full_name"`
	PasswordHash  string    `gorm:"not null" json:"-"`
	UserType      UserType  `gorm:"not null;default:'institution_user'" json:"user_type"`
	Role          UserRole  `json:"role"`
	InstitutionID *string   `gorm:"index" json:"institution_id,omitempty"`
	ActiveStatus  bool      `gorm:"not null;default:true" json:"active_status"`
	LastLogin     time.Time `json:"last_login"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u *User) IsSuperAdmin() bool {
	return u.UserType == UserTypeSuperAdmin
}
