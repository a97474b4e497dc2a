package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser       UserRole = "user"
	UserRoleStaffAdmin UserRole = "staff_admin"
	UserRoleSuperAdmin UserRole = "super_admin"

	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

func (r UserRole) IsAdmin() bool {
	return r == UserRoleStaffAdmin || r == UserRoleSuperAdmin
}

type User struct {
	Id              uuid.UUID
	Email           string
	PasswordHash    *string
	FullName        string
	MobileNumber    *string
	Role            UserRole
	Status          UserStatus
	EmailVerified   bool
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OtpType string

const (
	OtpTypeRegistration  OtpType = "registration"
	OtpTypePasswordReset OtpType = "password_reset"
)

type Otp struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Code      string
	Type      OtpType
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (o *Otp) IsValid(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}

type PasswordResetToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type UserRefreshToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	IpAddress string
	UserAgent string
}
