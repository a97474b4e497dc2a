package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// MonthlyCount is one month's worth of user signups.
type MonthlyCount struct {
	Month int
	Count int
}

// YearlyCount is one year's worth of user signups.
type YearlyCount struct {
	Year  int
	Count int
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteUnscoped(ctx context.Context, id uuid.UUID) error // Hard delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// OTP Management
	CreateOtp(ctx context.Context, otp *entity.Otp) error
	FindOtp(ctx context.Context, specs ...specification.Specification) (*entity.Otp, error)
	MarkOtpUsed(ctx context.Context, id uuid.UUID) error
	InvalidateOtps(ctx context.Context, userId uuid.UUID, otpType string) error

	// Token Management
	CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error
	FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID) error

	CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error
	FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.UserRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userId uuid.UUID) error

	// Business Specific
	ActivateUser(ctx context.Context, userId uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error

	// Queries/Stats
	MonthlyNewUsers(ctx context.Context, year int) ([]MonthlyCount, error)
	YearlyNewUsers(ctx context.Context) ([]YearlyCount, error)
}
