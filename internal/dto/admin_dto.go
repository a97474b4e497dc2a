package dto

import (
	"time"

	"github.com/google/uuid"
)

// User Management

type ListUsersQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Search   string `query:"search"`
	Status   string `query:"status" validate:"omitempty,oneof=pending active blocked"`
}

type ManagedUserResponse struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	Status       string    `json:"status"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

type DeleteUserInitiateResponse struct {
	ConfirmationToken string    `json:"confirmation_token"`
	ExpiresAt         time.Time `json:"expires_at"`
}

type DeleteUserConfirmRequest struct {
	ConfirmationToken string `json:"confirmation_token" validate:"required"`
}

// Administrators

type ListAdminsQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Search   string `query:"search"`
	Role     string `query:"role" validate:"omitempty,oneof=staff_admin super_admin"`
	Status   string `query:"status" validate:"omitempty,oneof=pending active blocked"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=3"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type UpdateAdminRequest struct {
	FullName string `json:"full_name" validate:"omitempty,min=3"`
	Status   string `json:"status" validate:"omitempty,oneof=active blocked"`
}

type AdminResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Logs

type ListLogsQuery struct {
	Level  string `query:"level"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}
