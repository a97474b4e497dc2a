package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendOTP(toEmail, otp, purpose string) error
	SendWelcome(toEmail, fullName string) error
	SendAdminCredentials(toEmail, fullName, password string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) from() string {
	return fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
}

func (s *emailService) SendOTP(toEmail, otp, purpose string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", toEmail)

	subject := "Your Verification Code"
	heading := "Verify Your Email"
	if purpose == "password_reset" {
		subject = "Your Password Reset Code"
		heading = "Password Reset Request"
	}
	m.SetHeader("Subject", subject)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>Your verification code is:</p>
			<h1 style="color: #4CAF50; letter-spacing: 5px;">%s</h1>
			<p>This code will expire in 10 minutes.</p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, heading, otp)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send OTP to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) SendWelcome(toEmail, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome Aboard!")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Your account has been verified and is ready to use.</p>
			<p>Start a conversation whenever you are ready.</p>
		</div>
	`, fullName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) SendAdminCredentials(toEmail, fullName, password string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Administrator Account")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello, %s</h2>
			<p>An administrator account has been created for you.</p>
			<p>Email: <strong>%s</strong></p>
			<p>Temporary password: <strong>%s</strong></p>
			<p>Please change your password after your first login.</p>
		</div>
	`, fullName, toEmail, password)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send credentials to %s: %w", toEmail, err)
	}
	return nil
}
