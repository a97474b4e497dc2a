package dto

// MailJob is the payload carried on the async mail bus.
type MailJob struct {
	Kind     string `json:"kind"` // otp | welcome | admin_credentials
	To       string `json:"to"`
	FullName string `json:"full_name,omitempty"`
	Otp      string `json:"otp,omitempty"`
	Purpose  string `json:"purpose,omitempty"` // registration | password_reset
	Password string `json:"password,omitempty"`
}

const (
	MailKindOtp              = "otp"
	MailKindWelcome          = "welcome"
	MailKindAdminCredentials = "admin_credentials"
)
