package controller

import (
	"errors"
	"fmt"
	"testing"

	"ai-chat-be/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrEmailTaken, 409},
		{service.ErrUserNotFound, 404},
		{service.ErrSessionNotFound, 404},
		{service.ErrAdminNotFound, 404},
		{service.ErrLogNotFound, 404},
		{service.ErrInvalidCredentials, 401},
		{service.ErrInvalidToken, 401},
		{service.ErrEmailNotVerified, 403},
		{service.ErrAccountBlocked, 403},
		{service.ErrForbidden, 403},
		{service.ErrInvalidOtp, 400},
		{service.ErrOtpExpired, 400},
		{service.ErrInvalidResetToken, 400},
		{service.ErrWrongPassword, 400},
		{service.ErrInvalidConfirm, 400},
		{service.ErrOtpCooldown, 429},
		{service.ErrAiUnavailable, 503},
		{errors.New("anything else"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestStatusForWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("%w: dial tcp refused", service.ErrAiUnavailable)
	assert.Equal(t, 503, statusForError(wrapped))
}
