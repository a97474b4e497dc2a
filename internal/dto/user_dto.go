package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName     string `json:"full_name" validate:"omitempty,min=3"`
	MobileNumber string `json:"mobile_number" validate:"omitempty,min=7,max=20"`
}
