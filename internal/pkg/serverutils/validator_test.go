package serverutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	OtpType  string `validate:"omitempty,oneof=registration password_reset"`
}

func TestValidateRequestPasses(t *testing.T) {
	req := sampleRequest{Email: "user@example.com", Password: "supersecret"}
	assert.NoError(t, ValidateRequest(req))
}

func TestValidateRequestJoinsMessages(t *testing.T) {
	err := ValidateRequest(sampleRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "password must be at least 8 characters")
}

func TestValidationDetails(t *testing.T) {
	details := ValidationDetails(sampleRequest{OtpType: "bogus"})
	require.NotNil(t, details)
	assert.Contains(t, details["email"], "required")
	assert.Contains(t, details["otptype"], "must be one of")
}

func TestValidationDetailsNilWhenValid(t *testing.T) {
	assert.Nil(t, ValidationDetails(sampleRequest{Email: "user@example.com", Password: "supersecret"}))
}
