package service

import "errors"

// Sentinel errors controllers map to HTTP status codes.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified. please check your inbox for the otp code")
	ErrAccountBlocked     = errors.New("user account is blocked")
	ErrInvalidOtp         = errors.New("invalid otp code")
	ErrOtpExpired         = errors.New("otp code expired")
	ErrOtpCooldown        = errors.New("please wait before requesting another code")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidConfirm     = errors.New("invalid or expired confirmation token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrAiUnavailable      = errors.New("ai service is currently unavailable")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrAdminNotFound      = errors.New("administrator not found")
	ErrLogNotFound        = errors.New("log entry not found")
)
